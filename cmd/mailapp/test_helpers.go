package main

import (
	"os"
	"path/filepath"
	"testing"
)

// binaryDir is where CLI tests expect the built binary, relative to this package.
var binaryDir = filepath.Join("..", "..", "bin")

// getBinaryPath returns the built mailapp binary, skipping the test when it
// has not been built or when running with -short.
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join(binaryDir, binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/%s ./cmd/%s'", binaryPath, binaryName, binaryName)
	}
	return binaryPath
}
