package mpi

import (
	"fmt"
	"testing"
)

func TestLimbPool(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		size int
	}{
		{"small", 10},
		{"medium", 100},
		{"large", 1000},
		{"xlarge", 5000},
		{"too_large", 300000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := acquireLimbs(tt.size)
			if len(buf) != tt.size {
				t.Fatalf("acquireLimbs(%d) length %d", tt.size, len(buf))
			}
			for i, v := range buf {
				if v != 0 {
					t.Fatalf("acquireLimbs(%d) not zeroed at %d", tt.size, i)
				}
			}
			buf[0] = 42
			releaseLimbs(buf)
			again := acquireLimbs(tt.size)
			if again[0] != 0 {
				t.Error("a reused buffer must be cleared")
			}
			releaseLimbs(again)
		})
	}
	releaseLimbs(nil)
}

func TestLimbPoolIndex(t *testing.T) {
	t.Parallel()
	linear := func(size int) int {
		for i, s := range limbPoolSizes {
			if size <= s {
				return i
			}
		}
		return -1
	}
	for _, size := range []int{0, 1, 63, 64, 65, 255, 256, 257, 4096, 70000, 262144, 262145} {
		if got, want := limbPoolIndex(size), linear(size); got != want {
			t.Errorf("limbPoolIndex(%d) = %d, want %d", size, got, want)
		}
	}
}

func BenchmarkMul(b *testing.B) {
	for _, n := range []int{8, 32, 128, 512} {
		x := fromLimbs(make([]uint32, n))
		for i := range x.limbs {
			x.limbs[i] = uint32(i*2654435761) & limbMask
		}
		b.Run(fmt.Sprintf("limbs=%d", n), func(b *testing.B) {
			z := new(Int)
			b.ReportAllocs()
			for b.Loop() {
				z.Mul(x, x)
			}
		})
	}
}
