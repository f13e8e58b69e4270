package mpi

import "context"

// KaratsubaThreshold is the operand size, in limbs, below which
// multiplication uses the schoolbook algorithm.
const KaratsubaThreshold = 32

// maxKaratsubaDepth caps recursion. Halving from MaxLimbs reaches the
// threshold long before this, so it only guards against misuse.
const maxKaratsubaDepth = 40

// pollInterval is how many iterations of a long loop run between two
// checks of the context.
const pollInterval = 1 << 10

// Mul sets z to x * y and returns z.
func (z *Int) Mul(x, y *Int) *Int {
	z, _ = z.MulContext(context.Background(), x, y)
	return z
}

// MulContext is Mul that gives up when ctx is done. ctx is checked at every
// Karatsuba level; on cancellation z is unchanged and ctx.Err() is returned.
func (z *Int) MulContext(ctx context.Context, x, y *Int) (*Int, error) {
	xl, yl := trim(x.limbs), trim(y.limbs)
	if len(xl) == 0 || len(yl) == 0 {
		return z.setLimbs(nil), nil
	}
	checkLimbs("Mul", len(xl)+len(yl))
	p, err := karatsuba(ctx, xl, yl, 0)
	if err != nil {
		return z, err
	}
	return z.setLimbs(p), nil
}

// karatsuba returns x * y in fresh storage.
//
// Each operand is split at m = max(len)/2 limbs into x = x1·B^m + x0, and
//
//	x·y = z2·B^2m + z1·B^m + z0
//
// with z2 = x1·y1, z0 = x0·y0 and z1 = (x0+x1)(y0+y1) - z2 - z0.
func karatsuba(ctx context.Context, x, y []uint32, depth int) ([]uint32, error) {
	x, y = trim(x), trim(y)
	if len(x) < KaratsubaThreshold || len(y) < KaratsubaThreshold || depth >= maxKaratsubaDepth {
		return schoolbook(x, y), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := max(len(x), len(y)) / 2
	x0, x1 := splitAt(x, m)
	y0, y1 := splitAt(y, m)

	z2, err := karatsuba(ctx, x1, y1, depth+1)
	if err != nil {
		return nil, err
	}
	z0, err := karatsuba(ctx, x0, y0, depth+1)
	if err != nil {
		return nil, err
	}
	z1, err := karatsuba(ctx, addLimbs(x0, x1), addLimbs(y0, y1), depth+1)
	if err != nil {
		return nil, err
	}
	z1 = subLimbsInPlace(z1, z2)
	z1 = subLimbsInPlace(z1, z0)

	out := makeLimbs("Mul", len(x)+len(y))
	addAt(out, z0, 0)
	addAt(out, z1, m)
	addAt(out, z2, 2*m)
	return trim(out), nil
}

// splitAt returns the low m limbs of x and the limbs above them.
func splitAt(x []uint32, m int) (lo, hi []uint32) {
	if len(x) <= m {
		return x, nil
	}
	return x[:m], x[m:]
}

// schoolbook returns x * y in fresh storage using the O(n·m) method.
func schoolbook(x, y []uint32) []uint32 {
	if len(x) == 0 || len(y) == 0 {
		return nil
	}
	buf := acquireLimbs(len(x) + len(y))
	defer releaseLimbs(buf)

	for i, xi := range x {
		if xi == 0 {
			continue
		}
		var carry uint64
		for j, yj := range y {
			t := uint64(xi)*uint64(yj) + uint64(buf[i+j]) + carry
			buf[i+j] = uint32(t & limbMask)
			carry = t >> limbBits
		}
		// The partial product fits in i+len(y)+1 limbs, so the carry
		// chain never runs past buf.
		for k := i + len(y); carry != 0; k++ {
			t := uint64(buf[k]) + carry
			buf[k] = uint32(t & limbMask)
			carry = t >> limbBits
		}
	}

	n := significant(buf)
	out := make([]uint32, n)
	copy(out, buf)
	return out
}
