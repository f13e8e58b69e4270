package mpi

import "context"

// GCD sets z to the greatest common divisor of a and b and returns z.
// GCD(a, 0) is a, so GCD(0, 0) is 0.
func (z *Int) GCD(a, b *Int) *Int {
	z, _ = z.GCDContext(context.Background(), a, b)
	return z
}

// GCDContext is GCD that gives up when ctx is done, leaving z unchanged.
func (z *Int) GCDContext(ctx context.Context, a, b *Int) (*Int, error) {
	x := new(Int).Set(a)
	y := new(Int).Set(b)
	t := new(Int)
	// Euclid: (x, y) <- (y, x mod y) until y is 0.
	for !y.IsZero() {
		if _, _, err := new(Int).DivModContext(ctx, x, y, t); err != nil {
			return z, err
		}
		x, y, t = y, t, x
	}
	return z.setLimbs(x.limbs), nil
}
