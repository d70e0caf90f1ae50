package retrieve

import (
	"os"
	"testing"
)

func TestTempRegistry(t *testing.T) {
	t.Run("persist and remove", func(t *testing.T) {
		reg := NewTempRegistry()

		path, err := reg.Persist([]byte("content"), "docent-test-*.txt")
		if err != nil {
			t.Fatalf("Persist() error = %v", err)
		}
		t.Cleanup(func() { os.Remove(path) })

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "content" {
			t.Errorf("persisted content = %q", data)
		}
		if reg.Len() != 1 {
			t.Errorf("Len() = %d, want 1", reg.Len())
		}

		if err := reg.Remove(path); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("file should be gone after Remove")
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		reg := NewTempRegistry()
		path, err := reg.Persist([]byte("x"), "docent-test-*.txt")
		if err != nil {
			t.Fatalf("Persist() error = %v", err)
		}

		if err := reg.Remove(path); err != nil {
			t.Fatalf("first Remove() error = %v", err)
		}
		if err := reg.Remove(path); err != nil {
			t.Errorf("second Remove() error = %v, want nil", err)
		}
	})

	t.Run("cleanup all", func(t *testing.T) {
		reg := NewTempRegistry()
		var paths []string
		for i := 0; i < 3; i++ {
			p, err := reg.Persist([]byte("x"), "docent-test-*.txt")
			if err != nil {
				t.Fatalf("Persist() error = %v", err)
			}
			paths = append(paths, p)
		}

		reg.CleanupAll()
		reg.CleanupAll() // second call is a no-op

		for _, p := range paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("file %s should be gone after CleanupAll", p)
			}
		}
		if reg.Len() != 0 {
			t.Errorf("Len() = %d after CleanupAll, want 0", reg.Len())
		}
	})
}
