// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/sysinfo/sysinfo.go
// Summary: Host CPU and memory figures for worker sizing and compile stats.

package sysinfo

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Workers returns configured when positive, otherwise the number of logical
// CPUs.
func Workers(configured int) int {
	if configured > 0 {
		return configured
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Snapshot is a point-in-time memory reading.
type Snapshot struct {
	RSS       uint64
	Total     uint64
	Available uint64
}

// Sample reads the process resident set and host memory.
func Sample() (Snapshot, error) {
	var s Snapshot
	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("read host memory: %w", err)
	}
	s.Total = vm.Total
	s.Available = vm.Available

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("open process: %w", err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return s, fmt.Errorf("read process memory: %w", err)
	}
	s.RSS = info.RSS
	return s, nil
}

func (s Snapshot) String() string {
	return fmt.Sprintf("rss %s, host %s free of %s", FormatBytes(s.RSS), FormatBytes(s.Available), FormatBytes(s.Total))
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
