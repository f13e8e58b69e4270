// Package calc implements the small expression language evaluated by
// mpicalc and the backends that evaluate it.
//
// A script is a sequence of statements separated by newlines or semicolons.
// A statement is either an assignment (name = expr) or a bare expression.
// Expressions operate on unsigned integers:
//
//	x = 22876792454961 * 1853020188851841
//	q = x / 1234; r = x % 1234
//	gcd(2310, 46189) << 3
//
// Operators, loosest first: << >>, then + -, then * / %. Built-in functions
// are gcd, bitlen, bit, setbit, modpow2, min and max. '#' starts a comment.
//
// Every backend evaluates the same AST, so results can be compared across
// implementations. The mpi backend runs on internal/mpi, the big backend on
// math/big, and the gmp backend (build tag gmp) on libgmp.
package calc
