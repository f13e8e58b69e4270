package calc

import (
	"context"
	"math/big"

	"github.com/agbru/mpicalc/internal/mpi"
	"github.com/agbru/mpicalc/internal/oracle"
)

// NewMPIBackend returns the backend built on internal/mpi.
func NewMPIBackend() Backend {
	return &engine[*mpi.Int]{
		name: "mpi",
		desc: "31-bit limbs, Karatsuba multiplication, bit-serial division",
		ops:  mpiOps{},
	}
}

type mpiOps struct{}

func (mpiOps) parse(lit string) (*mpi.Int, error)   { return new(mpi.Int).SetString(lit, 10) }
func (mpiOps) fromBig(b *big.Int) (*mpi.Int, error) { return oracle.FromBig(b) }
func (mpiOps) toBig(x *mpi.Int) *big.Int            { return oracle.ToBig(x) }
func (mpiOps) fromUint64(n uint64) *mpi.Int         { return mpi.NewUint64(n).Compact() }

func (mpiOps) toUint64(x *mpi.Int) (uint64, bool) {
	if !x.IsUint64() {
		return 0, false
	}
	return x.Uint64(), true
}

func (mpiOps) add(x, y *mpi.Int) *mpi.Int { return new(mpi.Int).Add(x, y) }
func (mpiOps) sub(x, y *mpi.Int) *mpi.Int { return new(mpi.Int).Sub(x, y) }

func (mpiOps) mul(ctx context.Context, x, y *mpi.Int) (*mpi.Int, error) {
	return new(mpi.Int).MulContext(ctx, x, y)
}

func (mpiOps) divmod(ctx context.Context, x, y *mpi.Int) (*mpi.Int, *mpi.Int, error) {
	return new(mpi.Int).DivModContext(ctx, x, y, new(mpi.Int))
}

func (mpiOps) gcd(ctx context.Context, x, y *mpi.Int) (*mpi.Int, error) {
	return new(mpi.Int).GCDContext(ctx, x, y)
}

func (mpiOps) lsh(x *mpi.Int, s uint) *mpi.Int     { return new(mpi.Int).Lsh(x, s) }
func (mpiOps) rsh(x *mpi.Int, s uint) *mpi.Int     { return new(mpi.Int).Rsh(x, s) }
func (mpiOps) modpow2(x *mpi.Int, s uint) *mpi.Int { return new(mpi.Int).ModPow2(x, s) }
func (mpiOps) bitlen(x *mpi.Int) int               { return x.BitLen() }
func (mpiOps) bit(x *mpi.Int, i uint) uint         { return x.Bit(i) }
func (mpiOps) setbit(x *mpi.Int, i uint) *mpi.Int  { return new(mpi.Int).Set(x).SetBit(i).Compact() }
func (mpiOps) cmp(x, y *mpi.Int) int               { return x.Cmp(y) }
