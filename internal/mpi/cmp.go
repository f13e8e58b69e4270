package mpi

// Cmp compares x and y and returns -1, 0 or +1. Missing high limbs count as
// zero, so compacted and non-compacted operands compare equal.
func (x *Int) Cmp(y *Int) int {
	return cmpLimbs(x.limbs, y.limbs)
}

// CmpUint32 compares x with n.
func (x *Int) CmpUint32(n uint32) int {
	small := [u32Limbs]uint32{n & limbMask, n >> limbBits}
	return cmpLimbs(x.limbs, small[:])
}

func cmpLimbs(x, y []uint32) int {
	for i := max(len(x), len(y)) - 1; i >= 0; i-- {
		a, b := limbAt(x, i), limbAt(y, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}
