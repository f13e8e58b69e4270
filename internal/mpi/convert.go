package mpi

import (
	"fmt"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

const (
	// u32Limbs and u64Limbs are ceil(32/31) and ceil(64/31).
	u32Limbs = 2
	u64Limbs = 3

	// decimalChunk digits are folded per multiply; 10^9 fits in a limb.
	decimalChunk = 9
	decimalBase  = 1_000_000_000
)

// SetUint32 sets z to n using exactly two limbs, zeroing the rest of z.
func (z *Int) SetUint32(n uint32) *Int {
	z.Enlarge(u32Limbs)
	z.limbs[0] = n & limbMask
	z.limbs[1] = n >> limbBits
	clear(z.limbs[u32Limbs:])
	return z
}

// SetUint64 sets z to n using exactly three limbs, zeroing the rest of z.
func (z *Int) SetUint64(n uint64) *Int {
	z.Enlarge(u64Limbs)
	z.limbs[0] = uint32(n & limbMask)
	z.limbs[1] = uint32((n >> limbBits) & limbMask)
	z.limbs[2] = uint32(n >> (2 * limbBits))
	clear(z.limbs[u64Limbs:])
	return z
}

// Uint32 returns the low 32 bits of x. Higher limbs are ignored.
func (x *Int) Uint32() uint32 {
	return limbAt(x.limbs, 0) | limbAt(x.limbs, 1)<<limbBits
}

// Uint64 returns the low 64 bits of x. Higher limbs are ignored.
func (x *Int) Uint64() uint64 {
	return uint64(limbAt(x.limbs, 0)) |
		uint64(limbAt(x.limbs, 1))<<limbBits |
		uint64(limbAt(x.limbs, 2))<<(2*limbBits)
}

// IsUint64 reports whether x fits in a uint64.
func (x *Int) IsUint64() bool {
	return x.BitLen() <= 64
}

// SetString sets z to the value of s, which must be a string of decimal
// digits. Only base 10 is supported. The empty string is 0.
//
// On error z is left unchanged and the returned *apperrors.ArithmeticError
// has kind ErrSyntax or ErrUnsupportedBase.
func (z *Int) SetString(s string, base int) (*Int, error) {
	if base != 10 {
		return nil, &apperrors.ArithmeticError{
			Op:     "SetString",
			Kind:   apperrors.ErrUnsupportedBase,
			Detail: fmt.Errorf("base %d", base),
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, &apperrors.ArithmeticError{
				Op:     "SetString",
				Kind:   apperrors.ErrSyntax,
				Detail: fmt.Errorf("%q at offset %d", s[i], i),
			}
		}
	}

	// result = result*10 + digit, folded nine digits at a time.
	t := new(Int)
	t.Enlarge(len(s)/9 + 1)
	for start := 0; start < len(s); {
		end := min(start+decimalChunk, len(s))
		var chunk, scale uint32 = 0, 1
		for _, c := range s[start:end] {
			chunk = chunk*10 + uint32(c-'0')
			scale *= 10
		}
		t.MulUint32(t, scale)
		t.AddUint32(t, chunk)
		start = end
	}
	return z.Set(t).Compact(), nil
}

// NewString returns a new Int parsed from the decimal string s. It panics
// with an *apperrors.ArithmeticError if s is not a decimal string, so it is
// meant for literals known to be valid.
func NewString(s string) *Int {
	z, err := new(Int).SetString(s, 10)
	if err != nil {
		panic(err)
	}
	return z
}

func limbRangeError(i int) error {
	return fmt.Errorf("limb %d exceeds %d bits", i, limbBits)
}
