package testutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/cli"
	"github.com/stretchr/testify/require"
)

// DirPlaceholder is replaced in every argument by the test's working
// directory.
const DirPlaceholder = "{{dir}}"

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one CLI invocation.
type HarnessResult struct {
	Stdout    string
	LogOutput string
	Err       error
	// ExitCode is 0 on success and the code carried by the error otherwise.
	ExitCode int
	// Dir is the directory the files were written to.
	Dir string
}

// Path returns the absolute path of a file written by the harness.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// ReadFile returns the content of a file in the harness directory.
func (r *HarnessResult) ReadFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(r.Path(name))
	require.NoError(t, err)
	return string(data)
}

// Harness writes files into a private directory and runs CLI commands
// against them, so several commands can share the same files.
type Harness struct {
	t       *testing.T
	dir     string
	environ map[string]string
}

// NewHarness creates a harness with files written into a temporary
// directory. The process environment is never read; environ is used instead.
func NewHarness(t *testing.T, files map[string]string, environ map[string]string) *Harness {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	if environ == nil {
		environ = map[string]string{}
	}
	return &Harness{t: t, dir: dir, environ: environ}
}

// Path returns the absolute path of a file in the harness directory.
func (h *Harness) Path(name string) string {
	return filepath.Join(h.dir, name)
}

// Run executes one CLI command with a background context.
func (h *Harness) Run(args ...string) *HarnessResult {
	h.t.Helper()
	return h.RunWithContext(context.Background(), args...)
}

// RunWithContext executes one CLI command. Logs are written at debug level.
func (h *Harness) RunWithContext(ctx context.Context, args ...string) *HarnessResult {
	h.t.Helper()

	full := []string{"--log-level", "debug"}
	for _, a := range args {
		full = append(full, strings.ReplaceAll(a, DirPlaceholder, h.dir))
	}

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	err := cli.Execute(ctx, full, out, logs, h.environ)

	res := &HarnessResult{
		Stdout:    out.String(),
		LogOutput: logs.String(),
		Err:       err,
		Dir:       h.dir,
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.Code
	} else if err != nil {
		res.ExitCode = 1
	}

	if os.Getenv("DMNGRID_TEST_LOGS") == "true" {
		h.t.Logf("--- Full Log Output for %s ---\n%s", h.t.Name(), res.LogOutput)
	}
	return res
}

// RunCLI writes files and runs a single command against them.
func RunCLI(t *testing.T, files map[string]string, args ...string) *HarnessResult {
	t.Helper()
	return NewHarness(t, files, nil).Run(args...)
}
