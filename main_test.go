package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHeadlessSeparatesLogsFromSummary(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"headless", "--seed", "1", "--max-ticks", "5", "--text", "HI"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("headless run: %v", err)
	}

	if !strings.Contains(stdout.String(), "cycle(s) complete") {
		t.Errorf("summary missing from stdout:\n%s", stdout.String())
	}
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "{") {
			t.Errorf("log line on stdout: %s", line)
		}
	}
	if !strings.Contains(stderr.String(), `"msg":"starting headless run"`) {
		t.Errorf("expected JSON logs on stderr, got:\n%s", stderr.String())
	}
}
