package badger

import (
	"path/filepath"
	"testing"
)

func TestOpenBackendInMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("Failed to open in-memory backend: %v", err)
	}
	defer backend.Close()

	if backend.IsClosed() {
		t.Fatal("Expected backend to be open")
	}
}

func TestOpenBackendOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "corpus_db")

	backend, err := OpenBackend(dir, false)
	if err != nil {
		t.Fatalf("Failed to open backend at %s: %v", dir, err)
	}

	if err := backend.Close(); err != nil {
		t.Fatalf("Failed to close backend: %v", err)
	}
	if !backend.IsClosed() {
		t.Fatal("Expected backend to be closed")
	}
}

func TestGetSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	defer backend.Close()

	seq, err := backend.GetSequence("testseq")
	if err != nil {
		t.Fatalf("Failed to get sequence: %v", err)
	}
	defer seq.Release()

	a, err := seq.Next()
	if err != nil {
		t.Fatalf("Failed to get next sequence value: %v", err)
	}
	b, err := seq.Next()
	if err != nil {
		t.Fatalf("Failed to get next sequence value: %v", err)
	}
	if b <= a {
		t.Fatalf("Expected increasing sequence, got %d then %d", a, b)
	}
}
