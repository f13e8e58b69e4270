package calc

import (
	"context"
	"fmt"
	"math/big"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// NewBigBackend returns the reference backend built on math/big. It applies
// the same unsigned rules as the mpi backend: a negative intermediate result
// or a zero divisor is an arithmetic error.
func NewBigBackend() Backend {
	return &engine[*big.Int]{
		name: "big",
		desc: "math/big reference implementation",
		ops:  bigOps{},
	}
}

type bigOps struct{}

func (bigOps) parse(lit string) (*big.Int, error) {
	if lit == "" {
		return new(big.Int), nil
	}
	z, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return nil, &apperrors.ArithmeticError{Op: "SetString", Kind: apperrors.ErrSyntax, Detail: fmt.Errorf("%q", lit)}
	}
	return z, nil
}

func (bigOps) fromBig(b *big.Int) (*big.Int, error) {
	if b.Sign() < 0 {
		return nil, apperrors.NewArithmeticError("FromBig", apperrors.ErrUnderflow)
	}
	return b, nil
}

func (bigOps) toBig(x *big.Int) *big.Int          { return x }
func (bigOps) fromUint64(n uint64) *big.Int       { return new(big.Int).SetUint64(n) }
func (bigOps) toUint64(x *big.Int) (uint64, bool) { return x.Uint64(), x.IsUint64() }
func (bigOps) add(x, y *big.Int) *big.Int         { return new(big.Int).Add(x, y) }

// math/big cannot be interrupted, so the context is only consulted between
// operations by the evaluator.
func (bigOps) mul(_ context.Context, x, y *big.Int) (*big.Int, error) {
	return new(big.Int).Mul(x, y), nil
}

func (bigOps) sub(x, y *big.Int) *big.Int {
	if x.Cmp(y) < 0 {
		panic(apperrors.NewArithmeticError("Sub", apperrors.ErrUnderflow))
	}
	return new(big.Int).Sub(x, y)
}

func (bigOps) divmod(_ context.Context, x, y *big.Int) (*big.Int, *big.Int, error) {
	if y.Sign() == 0 {
		panic(apperrors.NewArithmeticError("DivMod", apperrors.ErrDivisionByZero))
	}
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	return q, r, nil
}

func (bigOps) lsh(x *big.Int, s uint) *big.Int { return new(big.Int).Lsh(x, s) }
func (bigOps) rsh(x *big.Int, s uint) *big.Int { return new(big.Int).Rsh(x, s) }

func (bigOps) modpow2(x *big.Int, s uint) *big.Int {
	if uint(x.BitLen()) <= s {
		return x
	}
	mask := new(big.Int).Lsh(big.NewInt(1), s)
	mask.Sub(mask, big.NewInt(1))
	return new(big.Int).And(x, mask)
}

func (bigOps) gcd(_ context.Context, x, y *big.Int) (*big.Int, error) {
	return new(big.Int).GCD(nil, nil, x, y), nil
}

func (bigOps) bitlen(x *big.Int) int { return x.BitLen() }

func (bigOps) bit(x *big.Int, i uint) uint {
	if i >= uint(x.BitLen()) {
		return 0
	}
	return x.Bit(int(i))
}

func (bigOps) setbit(x *big.Int, i uint) *big.Int { return new(big.Int).SetBit(x, int(i), 1) }
func (bigOps) cmp(x, y *big.Int) int              { return x.Cmp(y) }
