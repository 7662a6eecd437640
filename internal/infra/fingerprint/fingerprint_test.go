package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromReader(t *testing.T) {
	// sha256("abc"), a fixed vector.
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	got, err := FromReader(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("from reader: %v", err)
	}
	if got != want {
		t.Fatalf("fingerprint = %s, want %s", got, want)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fromFile, err := FromFile(path)
	if err != nil {
		t.Fatalf("from file: %v", err)
	}
	fromReader, err := FromReader(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("from reader: %v", err)
	}
	if fromFile != fromReader {
		t.Fatalf("file and reader hashes diverge: %s vs %s", fromFile, fromReader)
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
