package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate keeps the user's config file and FIBCALC_* variables out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "FIBCALC_") {
			t.Setenv(k, "")
		}
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_PrintsResult(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"10"}, "Fibonacci number 10: 55\n"},
		{[]string{"1"}, "Fibonacci number 1: 1\n"},
		{[]string{"0"}, "Fibonacci number 0: 0\n"},
		{[]string{"100"}, "Fibonacci number 100: 354224848179261915075\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr: %s", code, errOut)
			}
			if out != tt.want {
				t.Errorf("stdout = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRun_ArgumentErrors(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{
		{},
		{"ten"},
		{"-5"},
		{"1.5"},
		{"3", "4"},
		{"10", "--format", "pickle"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, _, errOut := runCLI(t, args...)
			if code == 0 {
				t.Fatalf("exit code = 0, want non-zero")
			}
			if !strings.Contains(errOut, "Error:") {
				t.Errorf("stderr missing error: %q", errOut)
			}
		})
	}
}

func TestRun_SleepyOutput(t *testing.T) {
	isolate(t)

	code, out, errOut := runCLI(t, "4", "-s", "--sleep-interval", "1ms")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut)
	}
	want := strings.Join([]string{
		"Fibonacci number 1: 1; sleeping...",
		"Fibonacci number 2: 1; sleeping...",
		"Fibonacci number 3: 2; sleeping...",
		"Fibonacci number 4: 3",
		"",
	}, "\n")
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRun_CheckpointAndResume(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "ckpt")

	code, out, errOut := runCLI(t, "12", "--checkpoint-dir", dir)
	if code != 0 {
		t.Fatalf("first run exit code = %d, stderr: %s", code, errOut)
	}
	if want := "No loadable checkpoint in " + dir + "\nFibonacci number 12: 144\n"; out != want {
		t.Errorf("first run stdout = %q, want %q", out, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read checkpoint dir: %v", err)
	}
	if len(entries) != 12 {
		t.Errorf("got %d snapshot files, want 12", len(entries))
	}

	code, out, errOut = runCLI(t, "15", "-c", dir, "--format", "toml", "--keep", "2")
	if code != 0 {
		t.Fatalf("second run exit code = %d, stderr: %s", code, errOut)
	}
	if want := "Loaded latest checkpoint from " + dir + "\nFibonacci number 15: 610\n"; out != want {
		t.Errorf("second run stdout = %q, want %q", out, want)
	}

	entries, err = os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read checkpoint dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d snapshot files after retention, want 2", len(entries))
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".toml" {
			t.Errorf("unexpected snapshot %s", e.Name())
		}
	}

	code, out, _ = runCLI(t, "latest", "-c", dir)
	if code != 0 {
		t.Fatalf("latest exit code = %d", code)
	}
	if out != "Fibonacci number 15: 610\n" {
		t.Errorf("latest stdout = %q", out)
	}
}

func TestRun_LatestWithoutSnapshots(t *testing.T) {
	isolate(t)

	code, _, errOut := runCLI(t, "latest", "-c", filepath.Join(t.TempDir(), "none"))
	if code == 0 {
		t.Fatal("exit code = 0, want non-zero")
	}
	if !strings.Contains(errOut, "no loadable checkpoint") {
		t.Errorf("stderr = %q", errOut)
	}

	code, _, _ = runCLI(t, "latest")
	if code == 0 {
		t.Fatal("latest without --checkpoint-dir should fail")
	}
}

func TestRun_ConfigPrecedence(t *testing.T) {
	isolate(t)
	tmp := t.TempDir()
	fileDir := filepath.Join(tmp, "from-file")
	envDir := filepath.Join(tmp, "from-env")
	flagDir := filepath.Join(tmp, "from-flag")

	cfgPath := filepath.Join(tmp, "config.yaml")
	content := "checkpoint_dir: " + fileDir + "\nformat: yaml\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "5", "--config", cfgPath)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "No loadable checkpoint in "+fileDir) {
		t.Errorf("config file dir not used: %q", out)
	}
	matches, _ := filepath.Glob(filepath.Join(fileDir, "fib.*.yaml"))
	if len(matches) == 0 {
		t.Error("expected yaml snapshots from config file format")
	}

	t.Setenv("FIBCALC_CHECKPOINT_DIR", envDir)
	code, out, _ = runCLI(t, "5", "--config", cfgPath)
	if code != 0 || !strings.Contains(out, "No loadable checkpoint in "+envDir) {
		t.Errorf("env should override file: code=%d out=%q", code, out)
	}

	code, out, _ = runCLI(t, "5", "--config", cfgPath, "-c", flagDir)
	if code != 0 || !strings.Contains(out, "No loadable checkpoint in "+flagDir) {
		t.Errorf("flag should override env: code=%d out=%q", code, out)
	}
}

func TestRun_MissingExplicitConfig(t *testing.T) {
	isolate(t)

	code, _, errOut := runCLI(t, "5", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	if code == 0 {
		t.Fatal("exit code = 0, want non-zero")
	}
	if !strings.Contains(errOut, "absent.toml") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRun_TraceWritesSpans(t *testing.T) {
	isolate(t)

	code, out, errOut := runCLI(t, "8", "--trace", "-c", filepath.Join(t.TempDir(), "ckpt"))
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut)
	}
	if !strings.HasSuffix(out, "Fibonacci number 8: 21\n") {
		t.Errorf("stdout = %q", out)
	}
	for _, name := range []string{"fibcalc.compute", "snapshot.load", "snapshot.write"} {
		if !strings.Contains(errOut, name) {
			t.Errorf("stderr missing span %s", name)
		}
	}
}

func TestRun_WatchReportsExistingSnapshot(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "ckpt")

	if code, _, errOut := runCLI(t, "5", "-c", dir); code != 0 {
		t.Fatalf("compute exit code = %d, stderr: %s", code, errOut)
	}

	code, out, errOut := runCLI(t, "watch", "-c", dir, "--until", "1")
	if code != 0 {
		t.Fatalf("watch exit code = %d, stderr: %s", code, errOut)
	}
	if out != "Fibonacci number 5: 5\n" {
		t.Errorf("watch stdout = %q", out)
	}

	code, _, errOut = runCLI(t, "watch", "--until", "1")
	if code == 0 {
		t.Fatal("watch without --checkpoint-dir should fail")
	}
	if !strings.Contains(errOut, "--checkpoint-dir is required") {
		t.Errorf("stderr = %q", errOut)
	}
}
