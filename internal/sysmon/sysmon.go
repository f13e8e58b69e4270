// Package sysmon provides system-wide CPU and memory usage sampling, plus the
// processor features relevant to limb arithmetic.
package sysmon

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	xcpu "golang.org/x/sys/cpu"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	// TotalMem is the physical memory size in bytes (0 when unknown).
	TotalMem uint64
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.TotalMem = vmem.Total
	}
	return s
}

// Host describes the machine an evaluation or benchmark ran on.
type Host struct {
	Arch     string
	NumCPU   int
	Model    string
	Features []string
}

// DescribeHost returns the architecture, logical CPU count, CPU model name
// and the instruction set extensions that speed up wide multiplication.
func DescribeHost() Host {
	h := Host{
		Arch:     runtime.GOARCH,
		NumCPU:   runtime.NumCPU(),
		Features: Features(),
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.Model = infos[0].ModelName
	}
	return h
}

// Features lists the detected carry-chain and wide-multiply extensions.
// The list is empty on architectures without any of them.
func Features() []string {
	var f []string
	add := func(ok bool, name string) {
		if ok {
			f = append(f, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(xcpu.X86.HasADX, "adx")
		add(xcpu.X86.HasBMI2, "bmi2")
		add(xcpu.X86.HasAVX2, "avx2")
		add(xcpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(xcpu.ARM64.HasASIMD, "asimd")
		add(xcpu.ARM64.HasSVE, "sve")
	}
	return f
}
