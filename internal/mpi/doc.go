// Package mpi implements arbitrary-precision unsigned integers stored as
// little-endian slices of 31-bit limbs.
//
// The top bit of every 32-bit storage word is reserved as carry and borrow
// space during arithmetic and is always clear in a value at rest. A value's
// capacity (the number of limbs it holds) may exceed its significant length;
// Compact trims the trailing zero limbs.
//
// Methods follow the math/big convention: the receiver z receives the
// result and is returned, so calls can be chained:
//
//	z := new(mpi.Int).Mul(x, y)
//	z.Add(z, one)
//
// The receiver may alias any operand unless a method says otherwise.
//
// Contract violations (subtracting a larger value, dividing by zero,
// exceeding MaxLimbs) panic with an *apperrors.ArithmeticError, the way
// math/big panics on division by zero. SetString is the exception: it parses
// user text and returns an error instead. Use apperrors.RecoverArithmetic at
// the boundary where such panics must become errors.
package mpi
