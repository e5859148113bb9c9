package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCoerceBytes(t *testing.T) {
	// bytes pass through untouched
	in := []byte{1, 2, 3}
	got, err := CoerceBytes(in)
	if err != nil {
		t.Fatalf("CoerceBytes failed: %v", err)
	}
	if !bytes.Equal(got, in) {
		t.Errorf("Expected %v, got %v", in, got)
	}

	// strings are taken as UTF-8
	got, err = CoerceBytes("héllo")
	if err != nil {
		t.Fatalf("CoerceBytes failed: %v", err)
	}
	if string(got) != "héllo" {
		t.Errorf("Expected UTF-8 bytes, got %v", got)
	}

	// readers are drained
	got, err = CoerceBytes(bytes.NewReader([]byte("streamed")))
	if err != nil {
		t.Fatalf("CoerceBytes failed: %v", err)
	}
	if string(got) != "streamed" {
		t.Errorf("Expected drained reader contents, got %q", got)
	}

	// paths are read from the filesystem
	file := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(file, []byte{9, 8, 7}, 0644); err != nil {
		t.Fatal(err)
	}
	got, err = CoerceBytes(Path(file))
	if err != nil {
		t.Fatalf("CoerceBytes failed: %v", err)
	}
	if !bytes.Equal(got, []byte{9, 8, 7}) {
		t.Errorf("Expected file contents, got %v", got)
	}

	// a missing file surfaces as a binary-input error
	if _, err := CoerceBytes(Path(filepath.Join(t.TempDir(), "nope"))); err == nil {
		t.Errorf("Expected error for missing file")
	}

	// unsupported shapes are rejected with the typed error
	_, err = CoerceBytes(42)
	se, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if se.Code != RetCBinaryInput {
		t.Errorf("Expected RetCBinaryInput, got %v", se.Code)
	}
}
