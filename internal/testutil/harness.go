// Package testutil provides the integration test harness: it writes graph
// description files to a temporary directory, runs the application against
// them and decodes the JSON report.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/rendergraph/internal/app"
	"github.com/specialistvlad/rendergraph/internal/report"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
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

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Output    string
	Results   []report.Result
	Err       error
	Dir       string
}

// Option adjusts the application configuration used by the harness.
type Option func(cfg *app.Config)

// WithValidateOnly generates every graph without a target.
func WithValidateOnly() Option {
	return func(cfg *app.Config) { cfg.ValidateOnly = true }
}

// WithWorkers sets the number of graphs resolved concurrently.
func WithWorkers(n int) Option {
	return func(cfg *app.Config) { cfg.WorkerCount = n }
}

// WithFormat switches the report format. Results are only decoded for JSON.
func WithFormat(format report.Format) Option {
	return func(cfg *app.Config) { cfg.OutputFormat = string(format) }
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts ...Option) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts...)
}

// RunIntegrationTestWithContext provides a standardized harness for running integration
// tests with a specific context provided by the caller.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts ...Option) *HarnessResult {
	t.Helper()

	// 1. Write all description files to a temporary directory. Relative
	//    paths (e.g. "post/bloom.yaml") create the subdirectory structure.
	dir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	// 2. Configure the app to resolve the whole directory.
	appConfig := app.Config{
		GraphPaths:   []string{dir},
		LogLevel:     "debug",
		LogFormat:    "text",
		OutputFormat: string(report.FormatJSON),
		WorkerCount:  4,
	}
	for _, opt := range opts {
		opt(&appConfig)
	}
	cfg, err := app.NewConfig(appConfig)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logBuffer := &SafeBuffer{}

	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("application panicked | %v", r)
			}
		}()
		runErr = app.New(out, logBuffer, cfg).Run(ctx)
	}()

	if os.Getenv("RENDERGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result := &HarnessResult{
		LogOutput: logBuffer.String(),
		Output:    out.String(),
		Err:       runErr,
		Dir:       dir,
	}
	if cfg.OutputFormat == string(report.FormatJSON) && out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &result.Results), "report is not valid JSON:\n%s", out.String())
	}
	return result
}
