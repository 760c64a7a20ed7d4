package main

import (
	"path/filepath"
	"testing"
)

func TestCardPath(t *testing.T) {
	dir := filepath.Join("out", "cards")

	got, err := cardPath(dir, "2024-01-03")
	if err != nil {
		t.Fatalf("cardPath: %v", err)
	}
	if want := filepath.Join(dir, "2024-01-03.png"); got != want {
		t.Errorf("cardPath = %q, want %q", got, want)
	}

	for _, key := range []string{
		"../../tmp/x",
		"2024-01-03/../../x",
		"/etc/passwd",
		"2024-13-01",
		"",
	} {
		if path, err := cardPath(dir, key); err == nil {
			t.Errorf("cardPath(%q) = %q, want error", key, path)
		}
	}
}
