package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"alpha", "family/beta", ".cache/gamma"} {
		touch(t, filepath.Join(root, dir, ConfigFile))
		touch(t, filepath.Join(root, dir, WeightsFile))
	}
	touch(t, filepath.Join(root, "config-only", ConfigFile))

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 models, got %+v", got)
	}
	if got[0].Name != "alpha" || got[1].Name != "family/beta" {
		t.Fatalf("unexpected names: %+v", got)
	}
	if got[1].Path != filepath.Join(root, "family", "beta") {
		t.Fatalf("unexpected path: %s", got[1].Path)
	}
}

func TestDiscoverRootIsModel(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "solo")
	touch(t, filepath.Join(root, ConfigFile))
	touch(t, filepath.Join(root, WeightsFile))

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(got) != 1 || got[0].Name != "solo" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDiscoverRejectsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	touch(t, path)
	if _, err := Discover(path); err == nil {
		t.Fatalf("expected not-a-directory error")
	}
	if _, err := Discover(" "); err == nil {
		t.Fatalf("expected empty path error")
	}
}
