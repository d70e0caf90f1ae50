package home

import (
	"path/filepath"
	"testing"
)

func TestDir(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "docent-home")
		d, err := New(root)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if d.Path() != root {
			t.Errorf("Path() = %q, want %q", d.Path(), root)
		}
		if d.ConfigPath() != filepath.Join(root, ConfigFileName) {
			t.Errorf("ConfigPath() = %q", d.ConfigPath())
		}
		if d.Exists() {
			t.Error("Exists() = true before EnsureExists")
		}

		if err := d.EnsureExists(); err != nil {
			t.Fatalf("EnsureExists() error = %v", err)
		}
		if !d.Exists() {
			t.Error("Exists() = false after EnsureExists")
		}
		if d.ConfigExists() {
			t.Error("ConfigExists() = true with no config written")
		}
	})

	t.Run("default path under user home", func(t *testing.T) {
		d, err := New("")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if filepath.Base(d.Path()) != DefaultDirName {
			t.Errorf("default dir = %q, want %q", filepath.Base(d.Path()), DefaultDirName)
		}
	})
}
