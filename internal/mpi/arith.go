package mpi

import (
	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// Add sets z to x + y and returns z.
func (z *Int) Add(x, y *Int) *Int {
	return z.add(x.limbs, y.limbs)
}

// AddUint32 sets z to x + n and returns z.
func (z *Int) AddUint32(x *Int, n uint32) *Int {
	small := [u32Limbs]uint32{n & limbMask, n >> limbBits}
	return z.add(x.limbs, small[:])
}

// AddUint64 sets z to x + n and returns z.
func (z *Int) AddUint64(x *Int, n uint64) *Int {
	small := splitUint64(n)
	return z.add(x.limbs, small[:])
}

// Sub sets z to x - y and returns z. It panics with ErrUnderflow if y > x;
// z is not modified in that case.
func (z *Int) Sub(x, y *Int) *Int {
	return z.sub("Sub", x.limbs, y.limbs)
}

// SubUint32 sets z to x - n and returns z. It panics with ErrUnderflow if
// n > x.
func (z *Int) SubUint32(x *Int, n uint32) *Int {
	small := [u32Limbs]uint32{n & limbMask, n >> limbBits}
	return z.sub("SubUint32", x.limbs, small[:])
}

// MulUint32 sets z to x * n and returns z.
func (z *Int) MulUint32(x *Int, n uint32) *Int {
	xl := x.limbs
	size := len(xl)
	z.Enlarge(size)
	var carry uint64
	for i := 0; i < size; i++ {
		p := uint64(xl[i])*uint64(n) + carry
		z.limbs[i] = uint32(p & limbMask)
		carry = p >> limbBits
	}
	clear(z.limbs[size:])
	// carry < 2^33, so at most two more limbs.
	for i := size; carry != 0; i++ {
		if i == len(z.limbs) {
			z.Enlarge(i + 1)
		}
		z.limbs[i] = uint32(carry & limbMask)
		carry >>= limbBits
	}
	return z.Compact()
}

// add sets z to x + y. Each limb is read before the same index of z is
// written, so z may share storage with either operand.
func (z *Int) add(x, y []uint32) *Int {
	n := max(len(x), len(y))
	z.Enlarge(n)
	var carry uint32
	for i := 0; i < n; i++ {
		s := limbAt(x, i) + limbAt(y, i) + carry
		z.limbs[i] = s & limbMask
		carry = s >> limbBits
	}
	clear(z.limbs[n:])
	if carry != 0 {
		z.Enlarge(n + 1)
		z.limbs[n] = carry
	}
	return z.Compact()
}

// sub sets z to x - y.
func (z *Int) sub(op string, x, y []uint32) *Int {
	if cmpLimbs(x, y) < 0 {
		fail(op, apperrors.ErrUnderflow)
	}
	n := max(len(x), len(y))
	z.Enlarge(n)
	var borrow uint32
	for i := 0; i < n; i++ {
		// Wrapping subtraction leaves bit 31 set exactly when a borrow is due.
		d := limbAt(x, i) - limbAt(y, i) - borrow
		z.limbs[i] = d & limbMask
		borrow = d >> limbBits
	}
	clear(z.limbs[n:])
	return z.Compact()
}

func splitUint64(n uint64) [u64Limbs]uint32 {
	return [u64Limbs]uint32{
		uint32(n & limbMask),
		uint32((n >> limbBits) & limbMask),
		uint32(n >> (2 * limbBits)),
	}
}

// addLimbs returns x + y in fresh storage.
func addLimbs(x, y []uint32) []uint32 {
	n := max(len(x), len(y))
	out := makeLimbs("Add", n+1)
	var carry uint32
	for i := 0; i < n; i++ {
		s := limbAt(x, i) + limbAt(y, i) + carry
		out[i] = s & limbMask
		carry = s >> limbBits
	}
	out[n] = carry
	return trim(out)
}

// subLimbsInPlace computes x -= y for x >= y.
func subLimbsInPlace(x, y []uint32) []uint32 {
	var borrow uint32
	for i := 0; i < len(x); i++ {
		if i >= len(y) && borrow == 0 {
			break
		}
		d := x[i] - limbAt(y, i) - borrow
		x[i] = d & limbMask
		borrow = d >> limbBits
	}
	if borrow != 0 {
		fail("Mul", apperrors.ErrUnderflow)
	}
	return trim(x)
}

// addAt computes z += x << (31*i). z must be long enough to hold the sum.
func addAt(z, x []uint32, i int) {
	var carry uint32
	for j := 0; j < len(x) || carry != 0; j++ {
		s := z[i+j] + limbAt(x, j) + carry
		z[i+j] = s & limbMask
		carry = s >> limbBits
	}
}
