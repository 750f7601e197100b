// Package audit defines the host audit report and the checks that populate it.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
)

// GPUOffline is reported when the GPU diagnostic tool is absent or fails.
const GPUOffline = "OFFLINE_OR_NO_DRIVER"

// Check names, matching the JSON field each check populates.
const (
	CheckGPUStatus           = "gpu_status"
	CheckRogueProcesses      = "rogue_processes"
	CheckCriticalFilesSecure = "critical_files_secure"
	CheckLoadAverage         = "load_average"
)

// CheckNames lists every check RunCheck accepts, in report field order.
var CheckNames = []string{CheckGPUStatus, CheckRogueProcesses, CheckCriticalFilesSecure, CheckLoadAverage}

// Report is the single record produced per run.
type Report struct {
	GPUStatus           string     `json:"gpu_status"`
	RogueProcesses      []string   `json:"rogue_processes"`
	CriticalFilesSecure bool       `json:"critical_files_secure"`
	LoadAverage         [2]float64 `json:"load_average"` // 1-minute, 5-minute
}

// Process is one entry of the OS process table.
type Process struct {
	Name string
	PID  int32
}

// Emit writes the report as one line of minified JSON.
func Emit(w io.Writer, report Report) error {
	if report.RogueProcesses == nil {
		report.RogueProcesses = []string{}
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
