package mpi

import (
	"math/big"
	"testing"
)

// bigOf converts x to a big.Int by walking its limbs from the top.
func bigOf(x *Int) *big.Int {
	r := new(big.Int)
	for i := len(x.limbs) - 1; i >= 0; i-- {
		r.Lsh(r, limbBits)
		r.Or(r, big.NewInt(int64(x.limbs[i])))
	}
	return r
}

// fromBig converts a non-negative big.Int to an Int.
func fromBig(b *big.Int) *Int {
	z := new(Int)
	t := new(big.Int).Set(b)
	mask := big.NewInt(limbMask)
	for t.Sign() > 0 {
		z.limbs = append(z.limbs, uint32(new(big.Int).And(t, mask).Uint64()))
		t.Rsh(t, limbBits)
	}
	return z
}

// dec parses a decimal literal for tests.
func dec(t testing.TB, s string) *Int {
	t.Helper()
	z, err := new(Int).SetString(s, 10)
	if err != nil {
		t.Fatalf("SetString(%q): %v", s, err)
	}
	return z
}

func decString(x *Int) string {
	return bigOf(x).String()
}

// fromLimbs builds an Int from raw limbs, masking each to 31 bits.
func fromLimbs(l []uint32) *Int {
	z := &Int{limbs: make([]uint32, len(l))}
	for i, v := range l {
		z.limbs[i] = v & limbMask
	}
	return z
}

// checkInvariant fails the test if any limb has bit 31 set.
func checkInvariant(t *testing.T, x *Int) {
	t.Helper()
	for i, v := range x.limbs {
		if v > limbMask {
			t.Fatalf("limb %d = %#x has the carry bit set", i, v)
		}
	}
}
