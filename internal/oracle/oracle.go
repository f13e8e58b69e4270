// Package oracle converts between mpi.Int and math/big.Int. math/big is the
// reference implementation the mpi backend is checked against, and it also
// renders mpi values as decimal text, which the mpi package does not do.
package oracle

import (
	"math/big"
	"slices"

	"github.com/agbru/mpicalc/internal/mpi"
)

const limbBits = mpi.LimbBits

// ToBig returns the value of x as a new big.Int.
func ToBig(x *mpi.Int) *big.Int {
	limbs := x.Limbs()
	// Pack 31-bit limbs into little-endian bytes, then reverse for SetBytes.
	buf := make([]byte, 0, (len(limbs)*limbBits+7)/8)
	var acc uint64
	var n uint
	for _, l := range limbs {
		acc |= uint64(l) << n
		n += limbBits
		for n >= 8 {
			buf = append(buf, byte(acc))
			acc >>= 8
			n -= 8
		}
	}
	if n > 0 {
		buf = append(buf, byte(acc))
	}
	slices.Reverse(buf)
	return new(big.Int).SetBytes(buf)
}

// FromBig returns the value of b as a new mpi.Int. b must not be negative.
func FromBig(b *big.Int) (*mpi.Int, error) {
	if b.Sign() < 0 {
		return nil, errNegative
	}
	buf := b.Bytes()
	slices.Reverse(buf)
	limbs := make([]uint32, 0, (len(buf)*8+limbBits-1)/limbBits)
	var acc uint64
	var n uint
	for _, c := range buf {
		acc |= uint64(c) << n
		n += 8
		if n >= limbBits {
			limbs = append(limbs, uint32(acc&(1<<limbBits-1)))
			acc >>= limbBits
			n -= limbBits
		}
	}
	if n > 0 {
		limbs = append(limbs, uint32(acc))
	}
	return new(mpi.Int).SetLimbs(limbs)
}

// MustFromBig is like FromBig but panics on a negative argument.
func MustFromBig(b *big.Int) *mpi.Int {
	z, err := FromBig(b)
	if err != nil {
		panic(err)
	}
	return z
}

// String renders x in decimal.
func String(x *mpi.Int) string {
	return ToBig(x).String()
}

// Text renders x in the given base (2 to 62), as big.Int.Text does.
func Text(x *mpi.Int, base int) string {
	return ToBig(x).Text(base)
}
