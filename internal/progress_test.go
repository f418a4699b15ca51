package internal

import (
	"bytes"
	"os"
	"testing"
)

func TestPrintFunctions(t *testing.T) {
	// These print to stderr and return nothing; just verify they don't panic.
	PrintSuccess("saved")
	PrintError("failed")
	PrintWarning("careful")
	PrintStatus("working")
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("isTerminal(buffer) = true, want false")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer func() { _ = f.Close() }()
	if isTerminal(f) {
		t.Error("isTerminal(regular file) = true, want false")
	}
}
