package mpi

import (
	"math/bits"
	"sync"
)

// limbPools hold scratch limb slices by size class: 64, 256, 1K, 4K, 16K,
// 64K and 256K limbs. Larger requests are allocated directly.
var limbPools = [...]sync.Pool{
	{New: func() any { return make([]uint32, 64) }},
	{New: func() any { return make([]uint32, 256) }},
	{New: func() any { return make([]uint32, 1024) }},
	{New: func() any { return make([]uint32, 4096) }},
	{New: func() any { return make([]uint32, 16384) }},
	{New: func() any { return make([]uint32, 65536) }},
	{New: func() any { return make([]uint32, 262144) }},
}

var limbPoolSizes = [...]int{64, 256, 1024, 4096, 16384, 65536, 262144}

// limbPoolIndex returns the pool index for size, or -1 if size is too large
// for pooling. Sizes are powers of 4 from 4^3, so the index follows from
// bits.Len.
func limbPoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > limbPoolSizes[len(limbPoolSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 5) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// acquireLimbs returns a zeroed slice of exactly size limbs. Release it with
// releaseLimbs once the caller is done:
//
//	buf := acquireLimbs(n)
//	defer releaseLimbs(buf)
func acquireLimbs(size int) []uint32 {
	idx := limbPoolIndex(size)
	if idx < 0 {
		return makeLimbs("Mul", size)
	}
	buf := limbPools[idx].Get().([]uint32)
	clear(buf)
	return buf[:size]
}

// releaseLimbs returns buf to its pool. Slices that did not come from a
// pool are left to the garbage collector. Safe to call with nil.
func releaseLimbs(buf []uint32) {
	if buf == nil {
		return
	}
	c := cap(buf)
	idx := limbPoolIndex(c)
	if idx >= 0 && limbPoolSizes[idx] == c {
		limbPools[idx].Put(buf[:c])
	}
}
