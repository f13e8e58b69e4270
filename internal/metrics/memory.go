// Package metrics reads Go runtime memory statistics around evaluations and
// benchmark runs.
package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by live limb buffers and everything else
	HeapSys      uint64 // bytes obtained from OS for heap
	Sys          uint64 // total bytes obtained from OS
	TotalAlloc   uint64 // cumulative bytes allocated
	Mallocs      uint64 // cumulative heap allocations
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	HeapObjects  uint64 // number of allocated heap objects
}

// MemoryDelta is the difference between two snapshots of the same process.
type MemoryDelta struct {
	// Allocated is the number of bytes allocated between the snapshots.
	Allocated uint64
	// Allocs is the number of heap allocations between the snapshots.
	Allocs uint64
	// GCCycles is the number of collections that ran in between.
	GCCycles uint32
	// PeakHeap is the larger of the two HeapAlloc readings.
	PeakHeap uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}

// Measure runs fn between two snapshots and returns their difference.
func (mc *MemoryCollector) Measure(fn func()) MemoryDelta {
	before := mc.Snapshot()
	fn()
	return Delta(before, mc.Snapshot())
}

// Delta computes the change from before to after. Cumulative counters never
// go backwards; a reversed pair yields zeros rather than wrapping.
func Delta(before, after MemorySnapshot) MemoryDelta {
	d := MemoryDelta{PeakHeap: max(before.HeapAlloc, after.HeapAlloc)}
	if after.TotalAlloc >= before.TotalAlloc {
		d.Allocated = after.TotalAlloc - before.TotalAlloc
	}
	if after.Mallocs >= before.Mallocs {
		d.Allocs = after.Mallocs - before.Mallocs
	}
	if after.NumGC >= before.NumGC {
		d.GCCycles = after.NumGC - before.NumGC
	}
	return d
}
