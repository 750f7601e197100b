// Package main implements hostaudit, a one-shot host security and health audit.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"hostaudit/internal/audit"
	"hostaudit/internal/config"
	"hostaudit/internal/reporter"
	"hostaudit/internal/runner"
	"hostaudit/internal/sysinfo"
)

//go:embed audit.yaml
var auditConfig []byte

var (
	server   = flag.String("server", "", "Also POST the report to this server URL (e.g., http://localhost:8080)")
	runCheck = flag.String("run", "", "Run a single check and exit")
	timeout  = flag.Duration("timeout", 30*time.Second, "Deadline for the whole audit")
	debug    = flag.Bool("debug", false, "Enable debug logging to stderr")
)

func main() {
	flag.Parse()

	// Stdout carries only the report; logs stay off unless asked for.
	if !*debug {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Parse(auditConfig)
	if err != nil {
		// Logging may be discarded; a broken embedded config must still be visible.
		fmt.Fprintf(os.Stderr, "hostaudit: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	auditor := newAuditor(cfg, *debug)

	if *runCheck != "" {
		code := runSingleCheck(ctx, auditor, *runCheck, os.Stdout)
		cancel()
		os.Exit(code)
	}

	start := time.Now()
	report := auditor.Collect(ctx)
	log.Printf("[INFO] Audit completed in %v: %d rogue processes, files secure: %v",
		time.Since(start), len(report.RogueProcesses), report.CriticalFilesSecure)

	if err := audit.Emit(os.Stdout, report); err != nil {
		log.Printf("[ERROR] %v", err)
	}

	if *server != "" {
		if err := reporter.New(*server).Send(ctx, report); err != nil {
			log.Printf("[ERROR] %v", err)
		} else {
			log.Printf("[INFO] Report delivered to %s", *server)
		}
	}
}

func newAuditor(cfg *config.Config, debug bool) *audit.Auditor {
	host := &sysinfo.Host{Debug: debug}
	path := cfg.PathForOS(runtime.GOOS)
	if debug {
		log.Printf("[DEBUG] Auditing %s on %s with %d blacklisted names", path, runtime.GOOS, len(cfg.Blacklist))
	}
	return &audit.Auditor{
		Processes:     host,
		Load:          host,
		Files:         host,
		Runner:        &runner.Exec{Timeout: cfg.GPU.Timeout, Debug: debug},
		GPUCommand:    cfg.GPU.Command,
		GPUArgs:       cfg.GPU.Args,
		SensitiveFile: path,
		Blacklist:     cfg.Blacklist,
		Debug:         debug,
	}
}

// runSingleCheck prints one check's value as JSON and returns the exit code.
func runSingleCheck(ctx context.Context, auditor *audit.Auditor, name string, w io.Writer) int {
	value, err := auditor.RunCheck(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostaudit: %v\n", err)
		return 2
	}
	if err := json.NewEncoder(w).Encode(value); err != nil {
		fmt.Fprintf(os.Stderr, "hostaudit: failed to encode %s: %v\n", name, err)
		return 1
	}
	return 0
}
