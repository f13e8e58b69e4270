package mpi

import (
	"context"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// DivMod sets z to the quotient x / y and m to the remainder x mod y and
// returns the pair (z, m). It panics with ErrDivisionByZero if y is 0.
// z and m must be distinct; either may alias x or y.
//
// The quotient is produced one bit at a time by restoring binary long
// division, so the cost grows with the bit length of x times the limb count
// of y.
func (z *Int) DivMod(x, y, m *Int) (*Int, *Int) {
	z, m, _ = z.DivModContext(context.Background(), x, y, m)
	return z, m
}

// DivModContext is DivMod that gives up when ctx is done. It polls ctx every
// pollInterval quotient bits and returns ctx.Err() with z and m unchanged.
func (z *Int) DivModContext(ctx context.Context, x, y, m *Int) (*Int, *Int, error) {
	if y.IsZero() {
		fail("DivMod", apperrors.ErrDivisionByZero)
	}
	n := new(Int).Set(x).Compact()
	d := new(Int).Set(y).Compact()

	q := new(Int).Enlarge(len(n.limbs))
	r := new(Int).Enlarge(len(d.limbs) + 1)
	for i := n.BitLen() - 1; i >= 0; i-- {
		if i%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return z, m, err
			}
		}
		r.shl1()
		if n.Bit(uint(i)) == 1 {
			r.SetBit(0)
		}
		if r.Cmp(d) >= 0 {
			r.sub("DivMod", r.limbs, d.limbs)
			q.SetBit(uint(i))
		}
	}

	z.setLimbs(q.limbs)
	m.setLimbs(r.limbs)
	return z, m, nil
}

// Div sets z to the quotient x / y and returns z.
func (z *Int) Div(x, y *Int) *Int {
	z.DivMod(x, y, new(Int))
	return z
}

// Mod sets z to the remainder x mod y and returns z.
func (z *Int) Mod(x, y *Int) *Int {
	new(Int).DivMod(x, y, z)
	return z
}
