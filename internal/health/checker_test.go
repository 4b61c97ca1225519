package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	dirs := []string{t.TempDir(), t.TempDir()}
	c := NewChecker(dirs, time.Minute)
	if c == nil {
		t.Fatal("NewChecker() returned nil")
	}
	if len(c.checks) != 4 {
		t.Errorf("checks = %d, want 4 (local_dir + disk_space per directory)", len(c.checks))
	}
}

func TestCheckerRunAllHealthy(t *testing.T) {
	dirs := []string{t.TempDir()}
	c := NewChecker(dirs, time.Minute)
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("Statuses() = %d, want 2", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
}

func TestCheckerIsHealthyAllPass(t *testing.T) {
	c := NewChecker([]string{t.TempDir()}, time.Minute)
	c.runAll(context.Background())

	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestCheckerIsHealthyBeforeRun(t *testing.T) {
	c := NewChecker([]string{t.TempDir()}, time.Minute)

	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestCheckerMissingDirFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	c := NewChecker([]string{missing}, time.Minute)
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false when a configured dir is missing")
	}
	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2 (local_dir + disk_space)", len(statuses))
	}
	found := false
	for _, s := range statuses {
		if s.Name == "local_dir:"+missing {
			found = true
			if s.Healthy || s.Error == "" {
				t.Errorf("local_dir check should fail with an error, got %+v", s)
			}
		}
	}
	if !found {
		t.Errorf("statuses = %+v, missing local_dir check", statuses)
	}
}

func TestCheckerFileNotDirFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c := NewChecker([]string{path}, time.Minute)
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false when a configured dir is actually a file")
	}
}

func TestCheckerCustomCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{
				Name: "always_pass",
				CheckFn: func(ctx context.Context) error {
					return nil
				},
			},
		},
	}

	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if !statuses[0].Healthy {
		t.Error("always_pass check should be healthy")
	}
}

func TestCheckerFailingCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{
				Name: "always_fail",
				CheckFn: func(ctx context.Context) error {
					return os.ErrPermission
				},
			},
		},
	}

	c.runAll(context.Background())

	statuses := c.Statuses()
	if statuses[0].Healthy {
		t.Error("always_fail check should not be healthy")
	}
	if statuses[0].Error == "" {
		t.Error("error message should be populated")
	}
}

func TestCheckerStatusesCopy(t *testing.T) {
	c := NewChecker([]string{t.TempDir()}, time.Minute)
	c.runAll(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()

	if len(s1) > 0 {
		s1[0].Healthy = false
		if !s2[0].Healthy {
			t.Error("Statuses() should return a copy, not a reference")
		}
	}
}
