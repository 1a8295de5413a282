package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "histograms.png")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "two" {
		t.Fatalf("content: %q err=%v", b, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, got %d entries", len(entries))
	}
	if !FileExists(p) || FileExists(dir) || FileExists(filepath.Join(dir, "nope")) {
		t.Fatalf("FileExists mismatch")
	}
}

func TestEnsureDir(t *testing.T) {
	d := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(d); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if info, err := os.Stat(d); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := EnsureDir(""); err != nil {
		t.Fatalf("empty dir: %v", err)
	}
}
