// Package sysinfo snapshots process and host statistics for the
// health endpoint.
package sysinfo

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is one point-in-time reading. Host fields degrade to zero
// values when the platform probe fails; the process fields always
// populate.
type Snapshot struct {
	Go         string `json:"go"`
	Goroutines int    `json:"goroutines"`
	CPUCount   int    `json:"cpu_count"`

	// Process heap, bytes.
	HeapAlloc uint64 `json:"heap_alloc_bytes"`
	HeapSys   uint64 `json:"heap_sys_bytes"`

	// Host readings.
	Hostname      string  `json:"hostname,omitempty"`
	Platform      string  `json:"platform,omitempty"`
	HostUptime    uint64  `json:"host_uptime_seconds,omitempty"`
	MemoryTotal   uint64  `json:"memory_total_bytes,omitempty"`
	MemoryUsedPct float64 `json:"memory_used_percent,omitempty"`

	Taken time.Time `json:"taken"`
}

// Collect gathers a snapshot.
func Collect() Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := Snapshot{
		Go:         runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUCount:   runtime.NumCPU(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		Taken:      time.Now().UTC(),
	}

	if info, err := host.Info(); err == nil {
		snap.Hostname = info.Hostname
		snap.Platform = info.Platform
		snap.HostUptime = info.Uptime
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemoryTotal = vm.Total
		snap.MemoryUsedPct = vm.UsedPercent
	}
	return snap
}
