package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wikiq/internal/config"
)

// resetConfigureFlags clears flag state left behind by earlier Execute calls.
func resetConfigureFlags() {
	configureSets = nil
	configureAddProjects = nil
	configureRemoveProjects = nil
	configureYes = false
	configurePrint = false
	configureNonInteractive = false
}

// Test non-interactive configure usage with --set and --add-project and --print
func TestConfigureNonInteractivePrint(t *testing.T) {
	resetConfigureFlags()
	defer resetConfigureFlags()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	args := []string{"configure",
		"--config", cfgPath,
		"--non-interactive",
		"--yes",
		"--print",
		"--set", "confluence.base_url=https://example",
		"--set", "confluence.username=user",
		"--set", "confluence.api_token=tok",
		"--set", "confluence.timeout=45s",
		"--set", "search.limit=50",
		"--set", "search.expand=version, space,body.view",
		"--add-project", "name=docs,space_key=DOCS,parent=12345",
	}
	out, _, err := runCmdForTest(t, args)
	if err != nil {
		t.Fatalf("configure command error: %v", err)
	}
	if _, statErr := os.Stat(cfgPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no file written in print mode, stat err: %v", statErr)
	}

	mustContain := []string{
		"confluence:",
		"base_url: https://example",
		"username: user",
		"api_token: tok",
		"timeout: 45s",
		"search:",
		"limit: 50",
		"- body.view",
		"projects:",
		"- name: docs",
		"space_key: DOCS",
		`parent: "12345"`,
	}
	for _, m := range mustContain {
		if !strings.Contains(out, m) {
			t.Fatalf("expected output to contain %q. Full output: %s", m, out)
		}
	}
	if strings.Contains(out, "Configuration saved") {
		t.Fatalf("did not expect save confirmation in print mode: %s", out)
	}
}

// Test that running configure without --print writes the file
func TestConfigureWritesFile(t *testing.T) {
	resetConfigureFlags()
	defer resetConfigureFlags()
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	args := []string{"configure",
		"--config", cfgPath,
		"--non-interactive",
		"--yes",
		"--set", "confluence.base_url=https://example",
		"--set", "confluence.auth=bearer",
		"--set", "confluence.api_token=pat",
		"--set", "confluence.space_key=SPACE",
	}
	out, _, err := runCmdForTest(t, args)
	if err != nil {
		t.Fatalf("configure command error: %v", err)
	}
	if !strings.Contains(out, "Configuration saved to "+cfgPath) {
		t.Fatalf("expected save confirmation, got: %s", out)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("expected written config to load: %v", err)
	}
	if cfg.AuthMode() != config.AuthBearer || cfg.Confluence.SpaceKey != "SPACE" {
		t.Fatalf("written config missing expected fields: %+v", cfg.Confluence)
	}
	if cfg.Search.Limit != 0 || len(cfg.Projects) != 0 {
		t.Fatalf("expected optional sections to stay empty: %+v", cfg)
	}
}

func TestConfigureEditsExistingFile(t *testing.T) {
	resetConfigureFlags()
	defer resetConfigureFlags()

	existing := `confluence:
  base_url: https://example
  username: u
  api_token: t
projects:
  - name: alpha
    space_key: ALPHA
  - name: beta
    space_key: BETA
`
	cfgPath := writeConfig(t, t.TempDir(), existing)
	args := []string{"configure",
		"--config", cfgPath,
		"--non-interactive",
		"--yes",
		"--remove-project", "alpha",
		"--add-project", "name=beta,space_key=BETA2",
	}
	if _, _, err := runCmdForTest(t, args); err != nil {
		t.Fatalf("configure command error: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Projects) != 1 || cfg.Projects[0].Name != "beta" || cfg.Projects[0].SpaceKey != "BETA2" {
		t.Fatalf("unexpected projects: %+v", cfg.Projects)
	}
}

func TestConfigureErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"unsupported key", []string{"--set", "confluence.unknown_field=value"}, "unsupported key"},
		{"missing equals", []string{"--set", "confluence.base_url"}, "expected key=value"},
		{"bad limit", []string{"--set", "search.limit=many"}, "set search.limit"},
		{"bad project field", []string{"--add-project", "name=x,space_key=X,markdown_dir=./docs"}, "unknown project field"},
		{"incomplete project", []string{"--add-project", "name=x"}, "project requires name and space_key"},
		{"validation", []string{"--set", "confluence.base_url=https://example"}, "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfigureFlags()
			defer resetConfigureFlags()
			cfgPath := filepath.Join(t.TempDir(), "config.yaml")

			args := append([]string{"configure", "--config", cfgPath, "--non-interactive", "--yes"}, tt.args...)
			_, _, err := runCmdForTest(t, args)
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Fatalf("expected error containing %q, got: %v", tt.errText, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	if strings.Join(got, "|") != "a|b|c" {
		t.Fatalf("unexpected split: %q", got)
	}
	if splitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
