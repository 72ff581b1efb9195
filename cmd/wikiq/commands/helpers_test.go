package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/logger"
)

// minimal config yaml for commands requiring config
const testConfigYAML = `confluence:
  base_url: http://example
  username: u
  api_token: t
  space_key: DOCS
`

// runCmdForTest runs the root command with args, capturing cobra's output.
func runCmdForTest(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeConfig(t *testing.T, dir string, data string) string {
	t.Helper()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(data), 0600); err != nil {
		t.Fatalf("failed writing config: %v", err)
	}
	return p
}

func writeTempConfig(t *testing.T) string {
	t.Helper()
	return writeConfig(t, t.TempDir(), testConfigYAML)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	b, _ := io.ReadAll(r)
	return string(b)
}

// withMockClient temporarily replaces the client factory with one returning mc.
func withMockClient(t *testing.T, mc *confluence.MockClient, fn func()) {
	t.Helper()
	orig := newConfluenceClient
	newConfluenceClient = func(cfg *config.Config, log *logger.Logger) (confluence.ConfluenceClient, error) { return mc, nil }
	defer func() { newConfluenceClient = orig }()
	fn()
}

// useTempConfig points the global --config flag at a fresh test config.
func useTempConfig(t *testing.T) {
	t.Helper()
	configFile = writeTempConfig(t)
	verbose = false
}
