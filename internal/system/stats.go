package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceStats is a point-in-time view of the process and host memory,
// printed in the performance report.
type ResourceStats struct {
	RSS          uint64
	CPUPercent   float64
	HostTotal    uint64
	HostUsedPcnt float64
}

// Snapshot samples the current process and host memory.
func Snapshot() (ResourceStats, error) {
	var st ResourceStats

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return st, fmt.Errorf("process stats: %w", err)
	}
	if mi, err := proc.MemoryInfo(); err == nil {
		st.RSS = mi.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return st, fmt.Errorf("host memory: %w", err)
	}
	st.HostTotal = vm.Total
	st.HostUsedPcnt = vm.UsedPercent
	return st, nil
}

// String formats the stats for the performance report.
func (s ResourceStats) String() string {
	return fmt.Sprintf("RSS: %.1f MiB | CPU: %.1f%% | Host memory: %.1f GiB (%.0f%% used)",
		float64(s.RSS)/(1<<20), s.CPUPercent, float64(s.HostTotal)/(1<<30), s.HostUsedPcnt)
}
