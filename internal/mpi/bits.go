package mpi

import (
	"math/bits"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// Bit returns the value of bit i of x. Bits past the last limb are 0.
func (x *Int) Bit(i uint) uint {
	w := i / limbBits
	if w >= uint(len(x.limbs)) {
		return 0
	}
	return uint(x.limbs[w]>>(i%limbBits)) & 1
}

// SetBit sets bit i of z to 1, growing z if needed, and returns z. It never
// clears a bit.
func (z *Int) SetBit(i uint) *Int {
	w := i / limbBits
	checkLimbs("SetBit", int(w)+1)
	z.Enlarge(int(w) + 1)
	z.limbs[w] |= 1 << (i % limbBits)
	return z
}

// BitLen returns the position of the highest set bit of x plus one, or 0
// when x is 0.
func (x *Int) BitLen() int {
	n := significant(x.limbs)
	if n == 0 {
		return 0
	}
	return (n-1)*limbBits + bits.Len32(x.limbs[n-1])
}

// SizeInBase returns the number of digits of x in the given base. Only base
// 2 is supported; any other base panics with ErrUnsupportedBase.
func (x *Int) SizeInBase(base int) int {
	if base != 2 {
		fail("SizeInBase", apperrors.ErrUnsupportedBase)
	}
	return x.BitLen()
}

// Lsh sets z to x << s (x * 2^s) and returns z.
func (z *Int) Lsh(x *Int, s uint) *Int {
	xl := trim(x.limbs)
	if len(xl) == 0 {
		return z.setLimbs(nil)
	}
	ws, bs := int(s/limbBits), s%limbBits
	size := len(xl) + ws
	if bs != 0 {
		size++
	}
	out := makeLimbs("Lsh", size)
	for i, v := range xl {
		out[i+ws] |= (v << bs) & limbMask
		if bs != 0 {
			out[i+ws+1] = v >> (limbBits - bs)
		}
	}
	return z.setLimbs(out)
}

// Rsh sets z to x >> s (floor(x / 2^s)) and returns z.
func (z *Int) Rsh(x *Int, s uint) *Int {
	xl := trim(x.limbs)
	if s/limbBits >= uint(len(xl)) {
		return z.setLimbs(nil)
	}
	ws, bs := int(s/limbBits), s%limbBits
	out := make([]uint32, len(xl)-ws)
	for i := range out {
		out[i] = uint32((window(xl, i+ws) >> bs) & limbMask)
	}
	return z.setLimbs(out)
}

// window assembles the 64-bit value held by limbs i, i+1 and i+2.
func window(l []uint32, i int) uint64 {
	return uint64(limbAt(l, i)) |
		uint64(limbAt(l, i+1))<<limbBits |
		uint64(limbAt(l, i+2))<<(2*limbBits)
}

// ModPow2 sets z to x mod 2^s and returns z.
func (z *Int) ModPow2(x *Int, s uint) *Int {
	xl := trim(x.limbs)
	ws, bs := s/limbBits, s%limbBits
	if ws >= uint(len(xl)) {
		return z.Set(x).Compact()
	}
	keep := int(ws)
	if bs != 0 {
		keep++
	}
	z.Set(x)
	if bs != 0 {
		z.limbs[ws] &= 1<<bs - 1
	}
	clear(z.limbs[keep:])
	return z.Compact()
}

// shl1 shifts z left by one bit in place.
func (z *Int) shl1() {
	var carry uint32
	for i, v := range z.limbs {
		z.limbs[i] = (v<<1)&limbMask | carry
		carry = v >> (limbBits - 1)
	}
	if carry != 0 {
		n := len(z.limbs)
		z.Enlarge(n + 1)
		z.limbs[n] = carry
	}
}
