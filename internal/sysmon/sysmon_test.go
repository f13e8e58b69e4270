package sysmon

import (
	"runtime"
	"slices"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestSample_MemPercentNonZero(t *testing.T) {
	s := Sample()
	if s.MemPercent == 0 {
		t.Error("expected non-zero MemPercent on a running system")
	}
	if s.TotalMem == 0 {
		t.Error("expected non-zero TotalMem on a running system")
	}
}

func TestDescribeHost(t *testing.T) {
	h := DescribeHost()
	if h.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", h.Arch, runtime.GOARCH)
	}
	if h.NumCPU < 1 {
		t.Errorf("NumCPU = %d, want >= 1", h.NumCPU)
	}
}

func TestFeatures_KnownNames(t *testing.T) {
	known := []string{"adx", "bmi2", "avx2", "avx512f", "asimd", "sve"}
	for _, f := range Features() {
		if !slices.Contains(known, f) {
			t.Errorf("unexpected feature %q", f)
		}
	}
}
