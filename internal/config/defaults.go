package config

import "runtime"

// DefaultBenchLimbs are the operand sizes of -bench, chosen around the
// Karatsuba threshold of 32 limbs.
var DefaultBenchLimbs = []int{8, 32, 128, 512, 2048}

// ApplyAdaptiveDefaults fills settings left at zero with values derived from
// the hardware. Explicit settings are kept.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = EstimateBatchConcurrency()
	}
	if len(cfg.BenchLimbs) == 0 {
		cfg.BenchLimbs = append([]int(nil), DefaultBenchLimbs...)
	}
	return cfg
}

// EstimateBatchConcurrency returns how many scripts to evaluate at once.
// Multiplication buffers are large, so the count stays below the core count
// on big machines.
func EstimateBatchConcurrency() int {
	numCPU := runtime.NumCPU()
	switch {
	case numCPU <= 2:
		return 1
	case numCPU <= 8:
		return numCPU - 1
	default:
		return numCPU * 3 / 4
	}
}
