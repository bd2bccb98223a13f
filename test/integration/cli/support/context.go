// Package support holds the shared state and step definitions for the
// CLI integration suite.
package support

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/qrloc/cmd/qrloc/cmd"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastOutput string
	LastError  error

	// Test environment
	TempDir string
}

// NewTestContext creates a new test context with a private temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "qrloc-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{TempDir: tempDir}, nil
}

// Cleanup removes all temporary files created during the scenario.
func (tc *TestContext) Cleanup() error {
	if tc.TempDir == "" {
		return nil
	}
	return os.RemoveAll(tc.TempDir)
}

// TempPath resolves a file name inside the scenario's temp directory.
func (tc *TestContext) TempPath(name string) string {
	return filepath.Join(tc.TempDir, name)
}

// RunScan executes the scan command in-process and captures its output.
// Resetting flags explicitly keeps repeated executions of the shared
// cobra command independent of each other.
func (tc *TestContext) RunScan(extraArgs []string, files ...string) {
	args := []string{
		"scan",
		"--format", "json",
		"--output", "",
		"--rectified-dir", "",
		"--overlay-dir", "",
	}
	args = append(args, extraArgs...)
	args = append(args, files...)

	root := cmd.GetRootCommand()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	tc.LastError = root.Execute()
	tc.LastOutput = buf.String()
}
