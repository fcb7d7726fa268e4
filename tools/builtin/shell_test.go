package builtin

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestContainsTokenBoundary(t *testing.T) {
	cases := []struct {
		name   string
		cmd    string
		needle string
		want   bool
	}{
		{name: "plain", cmd: "cat secrets.env", needle: "secrets.env", want: true},
		{name: "quoted", cmd: "cat \"secrets.env\"", needle: "secrets.env", want: true},
		{name: "subpath", cmd: "cat ./secrets.env", needle: "secrets.env", want: true},
		{name: "redir", cmd: "grep x <secrets.env", needle: "secrets.env", want: true},
		{name: "nonmatch_prefix", cmd: "cat mysecrets.env", needle: "secrets.env", want: false},
		{name: "nonmatch_suffix", cmd: "cat secrets.env.bak", needle: "secrets.env", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := containsTokenBoundary(tc.cmd, tc.needle)
			if got != tc.want {
				t.Fatalf("containsTokenBoundary(%q,%q)=%v, want %v", tc.cmd, tc.needle, got, tc.want)
			}
		})
	}
}

func TestCommandDeniedPaths(t *testing.T) {
	offending, ok := commandDeniedPaths("cat ./secrets.env", []string{"secrets.env"})
	if !ok {
		t.Fatal("expected denied=true")
	}
	if offending != "secrets.env" {
		t.Fatalf("expected offending=secrets.env, got %q", offending)
	}

	if _, ok := commandDeniedPaths("echo hello", []string{"secrets.env"}); ok {
		t.Fatal("expected allowed command")
	}
}

func TestCommandDeniedTokens(t *testing.T) {
	cases := []struct {
		name string
		cmd  string
		want bool
	}{
		{name: "plain", cmd: "curl https://example.com", want: true},
		{name: "upper", cmd: "CURL https://example.com", want: true},
		{name: "subpath", cmd: "/usr/bin/curl https://example.com", want: true},
		{name: "nonmatch_prefix", cmd: "mycurl https://example.com", want: false},
		{name: "nonmatch_suffix", cmd: "curling https://example.com", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := commandDeniedTokens(tc.cmd, []string{"curl"})
			if ok != tc.want {
				t.Fatalf("commandDeniedTokens(%q)=%v, want %v", tc.cmd, ok, tc.want)
			}
		})
	}
}

func TestShellExecTool_Execute(t *testing.T) {
	tool := NewShellExecTool(true, 5*time.Second, 4096)
	out, err := tool.Execute(context.Background(), map[string]any{
		"cmd": "echo hello",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "exit_code: 0") {
		t.Fatalf("expected exit_code 0 in output, got %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected stdout hello, got %q", out)
	}
}

func TestShellExecTool_Execute_Disabled(t *testing.T) {
	tool := NewShellExecTool(false, 5*time.Second, 4096)
	_, err := tool.Execute(context.Background(), map[string]any{"cmd": "echo hi"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestShellExecTool_Execute_NonzeroExit(t *testing.T) {
	tool := NewShellExecTool(true, 5*time.Second, 4096)
	out, err := tool.Execute(context.Background(), map[string]any{"cmd": "exit 3"})
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !strings.Contains(out, "exit_code: 3") {
		t.Fatalf("expected exit_code 3 in output, got %q", out)
	}
}

func TestShellExecTool_Run_BypassesEnabledGate(t *testing.T) {
	tool := NewShellExecTool(false, 5*time.Second, 4096)
	out, err := tool.Run(context.Background(), "echo skill", "output")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "skill output") {
		t.Fatalf("expected skill output, got %q", out)
	}
	if tool.Enabled {
		t.Fatal("expected tool to stay disabled after Run")
	}
}

func TestShellExecTool_Run_DoesNotFlipEnabledForConcurrentExecute(t *testing.T) {
	tool := NewShellExecTool(false, 5*time.Second, 4096)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tool.Run(context.Background(), "echo skill", "")
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tool.Execute(context.Background(), map[string]any{"cmd": "echo direct"})
			if err == nil {
				t.Error("Execute must stay disabled while skills run")
			}
		}()
	}
	wg.Wait()
}

func TestShellExecTool_Execute_CwdOutsideBaseDirs(t *testing.T) {
	base := t.TempDir()
	tool := NewShellExecTool(true, 5*time.Second, 4096, base)
	_, err := tool.Execute(context.Background(), map[string]any{
		"cmd": "pwd",
		"cwd": "/",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "outside the allowed base dirs") {
		t.Fatalf("unexpected error: %v", err)
	}
}
