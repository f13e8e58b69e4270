package mpi

import (
	apperrors "github.com/agbru/mpicalc/internal/errors"
)

const (
	// limbBits is the number of magnitude bits held by one limb.
	limbBits = 31
	// limbMask selects the magnitude bits of a limb.
	limbMask = 1<<limbBits - 1

	// MaxLimbs bounds the capacity of a single value (about 2^31 bits).
	// Growing past it is reported as an allocation failure.
	MaxLimbs = 1 << 26
)

// LimbBits is the number of value bits per limb.
const LimbBits = limbBits

// LimbsFor returns the number of limbs needed to hold a value of the given
// bit length.
func LimbsFor(bits int) int { return (bits + limbBits - 1) / limbBits }

// Int is an unsigned multi-precision integer. The zero value is ready to use
// and represents 0 without allocating.
type Int struct {
	limbs []uint32
}

// New returns a new Int set to 0.
func New() *Int { return new(Int) }

// NewUint64 returns a new Int set to n.
func NewUint64(n uint64) *Int { return new(Int).SetUint64(n) }

// Cap returns the number of limbs currently held by z, including
// insignificant trailing zero limbs.
func (z *Int) Cap() int { return len(z.limbs) }

// Limbs returns a copy of z's limbs, least significant first.
func (z *Int) Limbs() []uint32 {
	out := make([]uint32, len(z.limbs))
	copy(out, z.limbs)
	return out
}

// Clear releases z's storage. z is 0 afterwards and may be reused.
func (z *Int) Clear() {
	z.limbs = nil
}

// Enlarge grows z to exactly n limbs, zero-filling the new limbs. It never
// shrinks z.
func (z *Int) Enlarge(n int) *Int {
	if n <= len(z.limbs) {
		return z
	}
	checkLimbs("Enlarge", n)
	if n <= cap(z.limbs) {
		old := len(z.limbs)
		z.limbs = z.limbs[:n]
		clear(z.limbs[old:])
		return z
	}
	grown := make([]uint32, n)
	copy(grown, z.limbs)
	z.limbs = grown
	return z
}

// Compact drops trailing zero limbs. A value of 0 ends with capacity 0.
func (z *Int) Compact() *Int {
	n := significant(z.limbs)
	if n == 0 {
		z.limbs = nil
		return z
	}
	if n < len(z.limbs) {
		z.limbs = z.limbs[:n]
	}
	return z
}

// Set copies x into z. z keeps its own storage: when z is larger than x its
// excess limbs are zeroed rather than released.
func (z *Int) Set(x *Int) *Int {
	if z == x {
		return z
	}
	src := x.limbs
	z.Enlarge(len(src))
	copy(z.limbs, src)
	clear(z.limbs[len(src):])
	return z
}

// SetLimbs sets z to the value of the little-endian limbs l. Every limb must
// fit in 31 bits.
func (z *Int) SetLimbs(l []uint32) (*Int, error) {
	for i, v := range l {
		if v > limbMask {
			return nil, &apperrors.ArithmeticError{
				Op:     "SetLimbs",
				Kind:   apperrors.ErrSyntax,
				Detail: limbRangeError(i),
			}
		}
	}
	return z.setLimbs(l), nil
}

// IsZero reports whether z is 0, whatever its capacity.
func (z *Int) IsZero() bool {
	return significant(z.limbs) == 0
}

// setLimbs copies src into z and compacts the result.
func (z *Int) setLimbs(src []uint32) *Int {
	z.Enlarge(len(src))
	copy(z.limbs, src)
	clear(z.limbs[len(src):])
	return z.Compact()
}

// significant returns the length of l without trailing zero limbs.
func significant(l []uint32) int {
	i := len(l)
	for i > 0 && l[i-1] == 0 {
		i--
	}
	return i
}

func trim(l []uint32) []uint32 {
	return l[:significant(l)]
}

// limbAt returns l[i], or 0 past the end of l.
func limbAt(l []uint32, i int) uint32 {
	if i < len(l) {
		return l[i]
	}
	return 0
}

// makeLimbs allocates n zero limbs after checking the MaxLimbs bound.
func makeLimbs(op string, n int) []uint32 {
	checkLimbs(op, n)
	return make([]uint32, n)
}

func checkLimbs(op string, n int) {
	if n > MaxLimbs {
		panic(&apperrors.ArithmeticError{
			Op:     op,
			Kind:   apperrors.ErrAllocation,
			Detail: apperrors.MemoryError{Requested: uint64(n), Limit: MaxLimbs},
		})
	}
}

func fail(op string, kind error) {
	panic(apperrors.NewArithmeticError(op, kind))
}
