// Package hostinfo reports static CPU capabilities and one-shot host
// resource snapshots. Nothing in the orchestrator, including its stall
// monitor, reads these snapshots.
package hostinfo

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// CPUInfo summarizes what cpuid could determine about the host processor.
type CPUInfo struct {
	BrandName    string
	LogicalCores int
	HasAVX2      bool
}

// DetectCPU returns the CPU's brand and logical core count, and whether it
// supports AVX2 — used only to log whether a SIMD-friendly code path would
// apply to the stitcher's crossfade loop, not to select one.
func DetectCPU() CPUInfo {
	return CPUInfo{
		BrandName:    cpuid.CPU.BrandName,
		LogicalCores: cpuid.CPU.LogicalCores,
		HasAVX2:      cpuid.CPU.Supports(cpuid.AVX2),
	}
}

// LogCPUInfo writes a single informational line describing the host CPU.
func LogCPUInfo(log *slog.Logger) {
	if log == nil {
		return
	}
	info := DetectCPU()
	log.Info("host cpu detected",
		"brand", info.BrandName,
		"logical_cores", info.LogicalCores,
		"avx2", info.HasAVX2,
		"goos", runtime.GOOS,
	)
}

// Snapshot is a point-in-time read of host resource usage.
type Snapshot struct {
	CPUPercent    float64
	MemUsedPct    float64
	MemTotalBytes uint64
}

// ReadSnapshot samples instantaneous CPU and memory utilization. It blocks
// for up to the given sample window to let gopsutil compute a CPU delta.
func ReadSnapshot(ctx context.Context, sampleWindow time.Duration) (Snapshot, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, sampleWindow, false)
	if err != nil {
		return Snapshot{}, err
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var cpuPct float64
	if len(cpuPercents) > 0 {
		cpuPct = cpuPercents[0]
	}

	return Snapshot{
		CPUPercent:    cpuPct,
		MemUsedPct:    vm.UsedPercent,
		MemTotalBytes: vm.Total,
	}, nil
}
