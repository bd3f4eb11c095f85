// Package system holds host-level helpers: resource limits, media probing
// and a memory report used to size render buffers.
package system

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit. A session holds several
// child processes and pipes at once and the stock soft limit can be low.
func InitResourceLimits(log *slog.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn("read NOFILE limit", "error", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn("raise NOFILE limit", "error", err)
	} else {
		log.Debug("raised NOFILE limit", "limit", rLimit.Cur)
	}
}

// ProbeAudioDuration asks ffprobe for the duration of an audio asset in
// seconds. The URL may be a local path or anything ffprobe can open.
func ProbeAudioDuration(url string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", url)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", url, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("ffprobe %s: parse %q: %w", url, strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// Stats is a point-in-time host report shown by the info command.
type Stats struct {
	CPUCount       int
	TotalMemory    uint64
	UsedMemory     uint64
	MemoryUsedPerc float64
}

// ReadStats collects host CPU/memory numbers. Errors are reduced to zero
// values; the report is informational only.
func ReadStats() Stats {
	var st Stats
	if n, err := cpu.Counts(true); err == nil {
		st.CPUCount = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.TotalMemory = vm.Total
		st.UsedMemory = vm.Used
		st.MemoryUsedPerc = vm.UsedPercent
	}
	return st
}

// LowMemory reports whether the host is under enough memory pressure that
// frame buffers should not be pooled aggressively.
func LowMemory() bool {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return false
	}
	return vm.UsedPercent > 90
}
