package main

import (
	"bytes"
	"context"
	"slices"
	"testing"

	"hostaudit/internal/audit"
	"hostaudit/internal/config"
	"hostaudit/internal/runner"
)

func TestNewAuditorFromEmbeddedConfig(t *testing.T) {
	cfg, err := config.Parse(auditConfig)
	if err != nil {
		t.Fatalf("embedded audit.yaml is invalid: %v", err)
	}

	a := newAuditor(cfg, false)
	if a.GPUCommand != "nvidia-smi" {
		t.Errorf("GPUCommand = %q, want nvidia-smi", a.GPUCommand)
	}
	wantBlacklist := []string{"xmrig", "gdb", "strace", "tcpdump", "nc", "ncat"}
	if !slices.Equal(a.Blacklist, wantBlacklist) {
		t.Errorf("Blacklist = %v, want %v", a.Blacklist, wantBlacklist)
	}
	if a.SensitiveFile != "/etc/shadow" {
		t.Errorf("SensitiveFile = %q, want /etc/shadow", a.SensitiveFile)
	}
	exec, ok := a.Runner.(*runner.Exec)
	if !ok || exec.Timeout != cfg.GPU.Timeout {
		t.Errorf("Runner = %#v, want *runner.Exec with timeout %v", a.Runner, cfg.GPU.Timeout)
	}
}

func TestRunSingleCheck(t *testing.T) {
	cfg, err := config.Parse(auditConfig)
	if err != nil {
		t.Fatalf("embedded audit.yaml is invalid: %v", err)
	}
	a := newAuditor(cfg, false)
	a.GPUCommand = "hostaudit-no-such-binary"

	var buf bytes.Buffer
	if code := runSingleCheck(context.Background(), a, audit.CheckGPUStatus, &buf); code != 0 {
		t.Fatalf("runSingleCheck() = %d, want 0", code)
	}
	if got, want := buf.String(), `"OFFLINE_OR_NO_DRIVER"`+"\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	for _, name := range []string{"firewall", "gpu-status", "load_average;id"} {
		buf.Reset()
		if code := runSingleCheck(context.Background(), a, name, &buf); code != 2 {
			t.Errorf("runSingleCheck(%q) = %d, want 2", name, code)
		}
		if buf.Len() != 0 {
			t.Errorf("runSingleCheck(%q) wrote %q to stdout", name, buf.String())
		}
	}
}
