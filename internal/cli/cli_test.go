package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := run(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Bulletin board API server") {
		t.Errorf("expected help text, got %q", out)
	}
	for _, sub := range []string{"serve", "sweep"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected %q in help, got %q", sub, out)
		}
	}
}

func TestSweepWithMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "sweep", "--env", filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(out, "deleted 0 posts") {
		t.Errorf("expected deletion summary, got %q", out)
	}
}

func TestSweepConfigError(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")

	if _, err := run(t, "sweep", "--env", filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("expected error without MONGO_URI")
	}
}
