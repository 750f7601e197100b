package audit

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"hostaudit/internal/runner"
)

// ProcessLister enumerates the running processes.
type ProcessLister interface {
	Processes(ctx context.Context) ([]Process, error)
}

// LoadReader reads the system load averages.
type LoadReader interface {
	LoadAverage(ctx context.Context) (one, five float64, err error)
}

// FileStater returns file metadata without reading contents.
type FileStater interface {
	Stat(path string) (fs.FileInfo, error)
}

// Auditor runs the host checks against injected OS facades.
type Auditor struct {
	Processes     ProcessLister
	Load          LoadReader
	Files         FileStater
	Runner        runner.Runner
	GPUCommand    string
	GPUArgs       []string
	SensitiveFile string
	Blacklist     []string
	Debug         bool
}

// Collect runs all checks concurrently and assembles the report.
func (a *Auditor) Collect(ctx context.Context) Report {
	var (
		report Report
		wg     sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		report.GPUStatus = a.GPUStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		report.RogueProcesses = a.RogueProcesses(ctx)
	}()
	go func() {
		defer wg.Done()
		report.CriticalFilesSecure = a.CriticalFilesSecure()
	}()
	go func() {
		defer wg.Done()
		report.LoadAverage = a.LoadAverage(ctx)
	}()
	wg.Wait()
	return report
}

// RunCheck runs a single named check and returns its value.
func (a *Auditor) RunCheck(ctx context.Context, name string) (any, error) {
	switch name {
	case CheckGPUStatus:
		return a.GPUStatus(ctx), nil
	case CheckRogueProcesses:
		return a.RogueProcesses(ctx), nil
	case CheckCriticalFilesSecure:
		return a.CriticalFilesSecure(), nil
	case CheckLoadAverage:
		return a.LoadAverage(ctx), nil
	default:
		return nil, fmt.Errorf("check %q not found (available: %s)", name, strings.Join(CheckNames, ", "))
	}
}

// GPUStatus returns the trimmed diagnostic output, or GPUOffline if the tool
// is missing or exits non-zero.
func (a *Auditor) GPUStatus(ctx context.Context) string {
	result := a.Runner.Run(ctx, a.GPUCommand, a.GPUArgs...)
	if !result.Success() {
		if a.Debug {
			log.Printf("[DEBUG] GPU probe unavailable (exit %d): %v", result.ExitCode, result.Err)
		}
		return GPUOffline
	}
	return strings.TrimSpace(strings.ToValidUTF8(result.Stdout, "�"))
}

// RogueProcesses returns "name:pid" for each running process whose name is
// blacklisted, ordered by pid.
func (a *Auditor) RogueProcesses(ctx context.Context) []string {
	procs, err := a.Processes.Processes(ctx)
	if err != nil {
		if a.Debug {
			log.Printf("[DEBUG] Failed to enumerate processes: %v", err)
		}
		return []string{}
	}
	return FilterBlacklisted(procs, a.Blacklist)
}

// FilterBlacklisted returns the processes whose name exactly matches an
// entry in blacklist, formatted as "name:pid" and sorted by pid then name.
func FilterBlacklisted(procs []Process, blacklist []string) []string {
	var matched []Process
	for _, p := range procs {
		if slices.Contains(blacklist, p.Name) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(x, y Process) int {
		if x.PID != y.PID {
			return int(x.PID) - int(y.PID)
		}
		return strings.Compare(x.Name, y.Name)
	})

	out := make([]string, 0, len(matched))
	for _, p := range matched {
		out = append(out, p.Name+":"+strconv.FormatInt(int64(p.PID), 10))
	}
	return out
}

// CriticalFilesSecure reports whether the sensitive file denies all access
// to "others". A file that cannot be statted counts as secure.
func (a *Auditor) CriticalFilesSecure() bool {
	info, err := a.Files.Stat(a.SensitiveFile)
	if err != nil {
		if a.Debug {
			log.Printf("[DEBUG] Cannot stat %s, treating as secure: %v", a.SensitiveFile, err)
		}
		return true
	}
	return info.Mode().Perm()&0o007 == 0
}

// LoadAverage returns the 1- and 5-minute load averages, or zeros if the
// platform cannot provide them.
func (a *Auditor) LoadAverage(ctx context.Context) [2]float64 {
	one, five, err := a.Load.LoadAverage(ctx)
	if err != nil {
		if a.Debug {
			log.Printf("[DEBUG] Load average unavailable, reporting zeros: %v", err)
		}
		return [2]float64{}
	}
	return [2]float64{finite(one), finite(five)}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
