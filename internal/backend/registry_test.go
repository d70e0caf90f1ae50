package backend

import "testing"

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockBackend()

		r.Register("test", mock)

		b, err := r.Get("test")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if b != mock {
			t.Error("got different backend than registered")
		}
		if !r.Has("test") {
			t.Error("Has() = false for registered backend")
		}
	})

	t.Run("get nonexistent", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.Get("nonexistent"); err == nil {
			t.Error("expected error for nonexistent backend")
		}
	})

	t.Run("reload from config", func(t *testing.T) {
		r := NewRegistry()
		r.Reload(RegistryConfig{Backends: map[string]BackendConfig{
			"mock":     {Type: "mock", Enabled: true},
			"disabled": {Type: "mock", Enabled: false},
			"bogus":    {Type: "nonsense", Enabled: true},
		}})

		if !r.Has("mock") {
			t.Error("enabled mock should be registered")
		}
		if r.Has("disabled") {
			t.Error("disabled backend should be skipped")
		}
		if r.Has("bogus") {
			t.Error("unknown type should be skipped")
		}
	})

	t.Run("reload replaces previous set", func(t *testing.T) {
		r := NewRegistry()
		r.Register("old", NewMockBackend())

		r.Reload(RegistryConfig{Backends: map[string]BackendConfig{
			"new": {Type: "mock", Enabled: true},
		}})

		if r.Has("old") {
			t.Error("stale backend survived reload")
		}
		if !r.Has("new") {
			t.Error("new backend missing after reload")
		}
	})
}
