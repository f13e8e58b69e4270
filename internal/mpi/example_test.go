package mpi_test

import (
	"fmt"

	"github.com/agbru/mpicalc/internal/mpi"
	"github.com/agbru/mpicalc/internal/oracle"
)

func ExampleInt_Mul() {
	x := mpi.NewString("22876792454961")
	y := mpi.NewString("1853020188851841")
	z := new(mpi.Int).Mul(x, y)
	fmt.Println(oracle.String(z))
	// Output:
	// 42391158275216203514294433201
}

func ExampleInt_DivMod() {
	q, r := new(mpi.Int).DivMod(mpi.NewString("549755813889"), mpi.NewUint64(1234), new(mpi.Int))
	fmt.Println(q.Uint64(), r.Uint64())
	// Output:
	// 445507142 661
}

func ExampleInt_GCD() {
	g := new(mpi.Int).GCD(mpi.NewUint64(2310), mpi.NewUint64(46189))
	fmt.Println(g.Uint64())
	// Output:
	// 11
}

func ExampleInt_Rsh() {
	x := mpi.NewString("42391158275216203514294433201")
	hi := new(mpi.Int).Rsh(x, 31)
	lo := new(mpi.Int).ModPow2(x, 31)
	fmt.Println(oracle.String(hi), lo.Uint64())
	// Output:
	// 19739921332903301117 316798385
}

func ExampleInt_SetString() {
	_, err := new(mpi.Int).SetString("12x4", 10)
	fmt.Println(err)
	// Output:
	// SetString: invalid decimal digit: 'x' at offset 2
}
