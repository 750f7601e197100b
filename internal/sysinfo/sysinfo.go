// Package sysinfo reads live OS state for the audit checks.
package sysinfo

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/process"

	"hostaudit/internal/audit"
)

var (
	_ audit.ProcessLister = (*Host)(nil)
	_ audit.LoadReader    = (*Host)(nil)
	_ audit.FileStater    = (*Host)(nil)
)

// Host is the live implementation of the audit OS facades.
type Host struct {
	Debug bool
}

// Processes returns the name and pid of every running process. Processes
// that exit while the table is being read are skipped.
func (h *Host) Processes(ctx context.Context) ([]audit.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	result := make([]audit.Process, 0, len(procs))
	skipped := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			skipped++
			continue
		}
		result = append(result, audit.Process{Name: name, PID: p.Pid})
	}

	if h.Debug {
		log.Printf("[DEBUG] Read %d processes (%d skipped)", len(result), skipped)
	}
	return result, nil
}

// LoadAverage returns the 1- and 5-minute load averages.
func (*Host) LoadAverage(ctx context.Context) (one, five float64, err error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read load average: %w", err)
	}
	return avg.Load1, avg.Load5, nil
}

// Stat returns file metadata, following symlinks.
func (*Host) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
