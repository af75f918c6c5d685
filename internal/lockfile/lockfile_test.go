package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireWritesPIDAndReleaseRemovesFile(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}

	lockPath := filepath.Join(dir, LockFileName)
	content, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if want := fmt.Sprintf("pid=%d\n", os.Getpid()); string(content) != want {
		t.Errorf("lock file content = %q, want %q", content, want)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("Release: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file still present after release: %s", lockPath)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got: %v", err)
	}

	// The directory is free again once the lock is gone.
	lock2, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	lock2.Release()
}

func TestAcquireConflict(t *testing.T) {
	dir := t.TempDir()

	lock1, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock1.Release()

	lock2, err := AcquireLock(dir)
	if err == nil {
		lock2.Release()
		t.Fatal("second AcquireLock on the same directory should fail")
	}

	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("error type = %T, want *LockError", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "another CoachPipe instance is using this state directory") {
		t.Errorf("error should name the conflicting instance: %s", msg)
	}
	if !strings.Contains(msg, dir) {
		t.Errorf("error should include the lock path: %s", msg)
	}
}

func TestAcquireCreatesMissingStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock should create the directory: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("state directory was not created: %v", err)
	}
}

func TestParseLockPID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"plain pid line", "pid=12345\n", 12345},
		{"pid with trailing fields", "pid=67890\nhost=coach01", 67890},
		{"no pid field", "host=coach01", 0},
		{"empty", "", 0},
		{"non-numeric pid", "pid=abc", 0},
		{"missing equals", "pid12345", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLockPID(tt.content); got != tt.want {
				t.Errorf("parseLockPID(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestProcessAlive(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Error("our own process should be alive")
	}
	if processAlive(999999) {
		t.Log("PID 999999 reported alive; unusual but possible")
	}
}
