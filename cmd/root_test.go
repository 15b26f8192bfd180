// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tasklist/internal/store"
)

// setup isolates config lookup and returns a data dir plus a runner that
// passes it as -data-dir ahead of the given args.
func setup(t *testing.T) (string, func(args ...string) (string, error)) {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"TASKLIST_BACKEND", "TASKLIST_DATA_DIR", "TASKLIST_NAMESPACE", "TASKLIST_KEY",
		"TASKLIST_LOG_LEVEL", "TASKLIST_LOG_FORMAT", "TASKLIST_LOG_FILE",
	} {
		t.Setenv(name, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	orig := now
	now = func() time.Time { return time.Date(2023, 4, 2, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	dataDir := filepath.Join(work, "data")
	runner := func(args ...string) (string, error) {
		var stdout, stderr bytes.Buffer
		full := append([]string{"-data-dir", dataDir}, args...)
		err := run(context.Background(), full, &stdout, &stderr)
		return stdout.String(), err
	}
	return dataDir, runner
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		_, runner := setup(t)
		out, err := runner("--help")
		if err != nil {
			t.Errorf("expected no error with --help, got %v", err)
		}
		if !strings.Contains(out, "Commands:") {
			t.Errorf("help output missing commands: %q", out)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		_, runner := setup(t)
		if _, err := runner("help"); err != nil {
			t.Errorf("expected no error with help command, got %v", err)
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		_, runner := setup(t)
		out, err := runner("-v")
		if err != nil {
			t.Errorf("expected no error with -v, got %v", err)
		}
		if out != "tasklist version dev\n" {
			t.Errorf("version output: got %q", out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		_, runner := setup(t)
		_, err := runner("unknown-command")
		if err == nil {
			t.Fatal("expected error for unknown command, got nil")
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("invalid backend fails config loading", func(t *testing.T) {
		_, runner := setup(t)
		_, err := runner("-backend", "redis", "ls")
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestLsSeedsFreshStore(t *testing.T) {
	dataDir, runner := setup(t)

	out, err := runner()
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	got := lines(out)
	if len(got) != 9 {
		t.Fatalf("expected 9 seed rows, got %d: %q", len(got), out)
	}
	if got[0] != "   1  [x] 1  Idée (2023-04-01) Late!" {
		t.Errorf("first row: got %q", got[0])
	}
	if got[8] != "   9  [ ] 9  Feedback (2023-04-01) Late!" {
		t.Errorf("last row: got %q", got[8])
	}

	if _, err := os.Stat(filepath.Join(dataDir, "tasklist", "tasks.json")); err != nil {
		t.Errorf("seed should be persisted: %v", err)
	}
}

func TestLsSearch(t *testing.T) {
	_, runner := setup(t)

	out, err := runner("ls", "LAND")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, `search "LAND": 1 of 9`) {
		t.Errorf("missing search header: %q", out)
	}
	if !strings.Contains(out, "   5  [x] 5  Landingpage (2023-04-01) Late!") {
		t.Errorf("expected Landingpage at its full-list position: %q", out)
	}

	out, err = runner("ls", "-04")
	if err != nil {
		t.Fatalf("ls with a leading dash failed: %v", err)
	}
	if !strings.Contains(out, `search "-04": 9 of 9`) {
		t.Errorf("date fragment should be searched as written: %q", out)
	}

	out, err = runner("ls", "--", "-04-01")
	if err != nil {
		t.Fatalf("ls -- failed: %v", err)
	}
	if !strings.Contains(out, `search "-04-01": 9 of 9`) {
		t.Errorf("-- should be dropped before the term: %q", out)
	}

	out, err = runner("ls", "nothing-matches")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, "no matching tasks") {
		t.Errorf("expected empty marker: %q", out)
	}
}

func TestAddCommand(t *testing.T) {
	_, runner := setup(t)

	out, err := runner("add", "-number", "10", "-due", "2023-05-01", "Launch", "party")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if out != "  10  [ ] 10  Launch party (2023-05-01)\n" {
		t.Errorf("add output: got %q", out)
	}

	out, err = runner("ls")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	got := lines(out)
	if len(got) != 10 || !strings.Contains(got[9], "Launch party") {
		t.Errorf("added task should persist as row 10: %q", out)
	}
}

func TestAddCommandRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing number", []string{"add", "Launch"}},
		{"missing title", []string{"add", "-number", "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, runner := setup(t)
			_, err := runner(tt.args...)
			if !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
			if err.Error() != "number and title required" {
				t.Errorf("error text: got %q", err.Error())
			}

			out, _ := runner("ls")
			if len(lines(out)) != 9 {
				t.Errorf("no task should be added: %q", out)
			}
		})
	}
}

func TestAddCommandRejectsBadDueDate(t *testing.T) {
	_, runner := setup(t)
	if _, err := runner("add", "-number", "1", "-due", "tomorrow", "x"); err == nil {
		t.Error("expected error for invalid due date")
	}
}

func TestRmCheckMv(t *testing.T) {
	_, runner := setup(t)

	out, err := runner("rm", "1")
	if err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if out != "deleted: Idée\n" {
		t.Errorf("rm output: got %q", out)
	}

	out, err = runner("check", "5")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if out != "   5  [x] 6  Développement (2023-04-01) Late!\n" {
		t.Errorf("check output: got %q", out)
	}

	out, err = runner("mv", "1", "3")
	if err != nil {
		t.Fatalf("mv failed: %v", err)
	}
	if out != "   3  [x] 2  Marché (2023-04-01) Late!\n" {
		t.Errorf("mv output: got %q", out)
	}

	out, err = runner("ls")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	got := lines(out)
	want := []string{"Wireframe", "Design", "Marché", "Landingpage"}
	for i, title := range want {
		if !strings.Contains(got[i], title) {
			t.Errorf("row %d: got %q, want %s", i+1, got[i], title)
		}
	}
}

func TestPositionErrors(t *testing.T) {
	_, runner := setup(t)

	tests := []struct {
		name       string
		args       []string
		outOfRange bool
	}{
		{"rm past end", []string{"rm", "42"}, true},
		{"check zero", []string{"check", "0"}, true},
		{"mv target past end", []string{"mv", "1", "10"}, true},
		{"not a number", []string{"rm", "abc"}, false},
		{"missing argument", []string{"mv", "1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.outOfRange && !errors.Is(err, store.ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}

	out, _ := runner("ls")
	if len(lines(out)) != 9 {
		t.Errorf("failed commands must not change the list: %q", out)
	}
}

func TestSQLiteBackend(t *testing.T) {
	dataDir, runner := setup(t)

	if _, err := runner("-backend", "sqlite", "add", "-number", "A-1", "Ship"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	out, err := runner("-backend", "sqlite", "ls", "ship")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, "  10  [ ] A-1  Ship") {
		t.Errorf("sqlite backend should persist the task: %q", out)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "tasklist.db")); err != nil {
		t.Errorf("expected sqlite database: %v", err)
	}
}

func TestMemoryBackendDoesNotPersist(t *testing.T) {
	_, runner := setup(t)

	if _, err := runner("-backend", "memory", "rm", "1"); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	out, err := runner("-backend", "memory", "ls")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(lines(out)[0], "Idée") {
		t.Errorf("memory backend should start from the seed each run: %q", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	dataDir, runner := setup(t)

	out, err := runner("doctor")
	if err != nil {
		t.Fatalf("doctor on a fresh dir should pass: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Not found") {
		t.Errorf("expected missing snapshot warning: %q", out)
	}
	if !strings.Contains(out, "backend         file (default)") {
		t.Errorf("expected backend source: %q", out)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "tasklist", "tasks.json")); err == nil {
		t.Error("doctor must not write a snapshot")
	}

	if _, err := runner("ls"); err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	out, err = runner("doctor", "-v")
	if err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out, "Valid (9 tasks)") || !strings.Contains(out, "Feedback") {
		t.Errorf("expected valid snapshot report: %q", out)
	}
	if !strings.Contains(out, "Directory: "+filepath.Join(dataDir, "tasklist")) {
		t.Errorf("expected storage directory: %q", out)
	}

	snapshot := filepath.Join(dataDir, "tasklist", "tasks.json")
	if err := os.WriteFile(snapshot, []byte(`[{"number":1,"title":"x","isChecked":"yes"}]`), 0600); err != nil {
		t.Fatal(err)
	}
	out, err = runner("doctor")
	if err == nil {
		t.Fatal("doctor should fail on an invalid snapshot")
	}
	if !strings.Contains(out, "[0].isChecked") {
		t.Errorf("expected validation path in report: %q", out)
	}
}

func TestMalformedSnapshotFallsBackToSeed(t *testing.T) {
	dataDir, runner := setup(t)
	snapshot := filepath.Join(dataDir, "tasklist", "tasks.json")
	if err := os.MkdirAll(filepath.Dir(snapshot), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(snapshot, []byte(`{not json`), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runner("ls")
	if err != nil {
		t.Fatalf("malformed snapshot must not be fatal: %v", err)
	}
	if len(lines(out)) != 9 {
		t.Errorf("expected seed rows: %q", out)
	}
}

func TestEmptySnapshotStaysEmpty(t *testing.T) {
	dataDir, runner := setup(t)
	snapshot := filepath.Join(dataDir, "tasklist", "tasks.json")
	if err := os.MkdirAll(filepath.Dir(snapshot), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(snapshot, []byte(`[]`), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runner("ls")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if out != "no tasks\n" {
		t.Errorf("empty snapshot should load empty: %q", out)
	}
}

func TestNamespaceAndKeyFlags(t *testing.T) {
	dataDir, runner := setup(t)

	if _, err := runner("-namespace", "work", "-key", "inbox", "ls"); err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "work", "inbox.json")); err != nil {
		t.Errorf("expected snapshot under namespace and key: %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	_, runner := setup(t)

	out, err := runner("init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if out != "wrote tasklist.toml\n" {
		t.Errorf("init output: got %q", out)
	}
	if _, err := os.Stat("tasklist.toml"); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out, err = runner("init")
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("init should not overwrite: %q", out)
	}

	// The written file is picked up as project config.
	out, err = runner("doctor")
	if err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out, "File: tasklist.toml") {
		t.Errorf("doctor should report the project file: %q", out)
	}
}

func TestTuiRequiresTTY(t *testing.T) {
	_, runner := setup(t)
	_, err := runner("tui")
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("expected TTY error, got %v", err)
	}
}
