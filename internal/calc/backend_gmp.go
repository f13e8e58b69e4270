//go:build gmp

// This file adds a backend on libgmp through cgo. It is only compiled with
// -tags=gmp and needs the GMP development headers (libgmp-dev on Debian,
// gmp on Homebrew).

package calc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ncw/gmp"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

func init() {
	RegisterBackend("gmp", NewGMPBackend)
}

// NewGMPBackend returns the backend built on github.com/ncw/gmp.
func NewGMPBackend() Backend {
	return &engine[*gmp.Int]{
		name: "gmp",
		desc: "GNU MP through cgo",
		ops:  gmpOps{},
	}
}

type gmpOps struct{}

func (gmpOps) parse(lit string) (*gmp.Int, error) {
	if lit == "" {
		return new(gmp.Int), nil
	}
	z, ok := new(gmp.Int).SetString(lit, 10)
	if !ok {
		return nil, &apperrors.ArithmeticError{Op: "SetString", Kind: apperrors.ErrSyntax, Detail: fmt.Errorf("%q", lit)}
	}
	return z, nil
}

func (o gmpOps) fromBig(b *big.Int) (*gmp.Int, error) {
	if b.Sign() < 0 {
		return nil, apperrors.NewArithmeticError("FromBig", apperrors.ErrUnderflow)
	}
	return new(gmp.Int).SetBytes(b.Bytes()), nil
}

func (gmpOps) toBig(x *gmp.Int) *big.Int { return new(big.Int).SetBytes(x.Bytes()) }

func (gmpOps) fromUint64(n uint64) *gmp.Int { return new(gmp.Int).SetUint64(n) }

func (gmpOps) toUint64(x *gmp.Int) (uint64, bool) {
	if x.BitLen() > 64 {
		return 0, false
	}
	return x.Uint64(), true
}

func (gmpOps) add(x, y *gmp.Int) *gmp.Int { return new(gmp.Int).Add(x, y) }

// GMP calls cannot be interrupted; the evaluator checks the context between
// operations.
func (gmpOps) mul(_ context.Context, x, y *gmp.Int) (*gmp.Int, error) {
	return new(gmp.Int).Mul(x, y), nil
}

func (gmpOps) sub(x, y *gmp.Int) *gmp.Int {
	if x.Cmp(y) < 0 {
		panic(apperrors.NewArithmeticError("Sub", apperrors.ErrUnderflow))
	}
	return new(gmp.Int).Sub(x, y)
}

func (gmpOps) divmod(_ context.Context, x, y *gmp.Int) (*gmp.Int, *gmp.Int, error) {
	if y.Sign() == 0 {
		panic(apperrors.NewArithmeticError("DivMod", apperrors.ErrDivisionByZero))
	}
	q, r := new(gmp.Int).QuoRem(x, y, new(gmp.Int))
	return q, r, nil
}

func (gmpOps) lsh(x *gmp.Int, s uint) *gmp.Int { return new(gmp.Int).Lsh(x, s) }
func (gmpOps) rsh(x *gmp.Int, s uint) *gmp.Int { return new(gmp.Int).Rsh(x, s) }

func (gmpOps) modpow2(x *gmp.Int, s uint) *gmp.Int {
	if uint(x.BitLen()) <= s {
		return x
	}
	return new(gmp.Int).Sub(x, new(gmp.Int).Lsh(new(gmp.Int).Rsh(x, s), s))
}

func (gmpOps) gcd(_ context.Context, x, y *gmp.Int) (*gmp.Int, error) {
	return new(gmp.Int).GCD(new(gmp.Int), new(gmp.Int), x, y), nil
}

func (gmpOps) bitlen(x *gmp.Int) int { return x.BitLen() }

func (gmpOps) bit(x *gmp.Int, i uint) uint {
	if i >= uint(x.BitLen()) {
		return 0
	}
	return x.Bit(int(i))
}

func (gmpOps) setbit(x *gmp.Int, i uint) *gmp.Int {
	return new(gmp.Int).SetBit(x, int(i), 1)
}

func (gmpOps) cmp(x, y *gmp.Int) int { return x.Cmp(y) }
