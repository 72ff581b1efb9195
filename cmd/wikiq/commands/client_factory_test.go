package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/logger"
)

func TestNewConfluenceClientFromConfig(t *testing.T) {
	cfg := &config.Config{
		Confluence: config.ConfluenceConfig{
			BaseURL:  "https://example.atlassian.net/wiki",
			Username: "u",
			APIToken: "t",
			Timeout:  "5s",
		},
		Search: config.SearchConfig{Expand: []string{"version", "body.view"}},
	}

	client, err := newConfluenceClient(cfg, logger.New(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := client.(*confluence.Client)
	if !ok {
		t.Fatalf("expected *confluence.Client, got %T", client)
	}
	if got := c.BaseURL().String(); got != "https://example.atlassian.net/wiki/" {
		t.Fatalf("unexpected base URL %s", got)
	}
	if got := strings.Join(c.Expand().Search, ","); got != "version,body.view" {
		t.Fatalf("expected search expand from config, got %s", got)
	}
	if got := strings.Join(c.Expand().Content, ","); got != strings.Join(confluence.DefaultExpand().Content, ",") {
		t.Fatalf("expected default content expand, got %s", got)
	}
}

func TestNewConfluenceClientRejectsRelativeURL(t *testing.T) {
	cfg := &config.Config{Confluence: config.ConfluenceConfig{BaseURL: "example/wiki", Auth: config.AuthBearer, APIToken: "t"}}
	if _, err := newConfluenceClient(cfg, logger.New(false)); err == nil {
		t.Fatalf("expected error for relative base URL")
	}
}

func TestLoadSessionUsesFactory(t *testing.T) {
	useTempConfig(t)
	mc := confluence.NewMockClient()

	var seen *config.Config
	orig := newConfluenceClient
	newConfluenceClient = func(cfg *config.Config, log *logger.Logger) (confluence.ConfluenceClient, error) {
		seen = cfg
		return mc, nil
	}
	defer func() { newConfluenceClient = orig }()

	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		t.Fatalf("loadSession: %v", err)
	}
	if client != mc || seen != cfg || log == nil {
		t.Fatalf("expected factory to receive loaded config and return mock")
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.Timeout())
	}
}

func TestLoadSessionMissingConfig(t *testing.T) {
	configFile = "/nonexistent/wikiq.yaml"
	_, _, _, err := loadSession(config.LoadForSearch)
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Fatalf("expected config load error, got %v", err)
	}
}

func TestResolveSpace(t *testing.T) {
	newCfg := func() *config.Config {
		return &config.Config{
			Confluence: config.ConfluenceConfig{SpaceKey: ""},
			Projects: []config.ProjectConfig{
				{Name: "alpha", SpaceKey: "ALPHA"},
				{Name: "beta", SpaceKey: "BETA"},
			},
		}
	}

	tests := []struct {
		name      string
		spaceFlag string
		project   string
		want      string
		wantErr   bool
	}{
		{"flag wins", "FLAG", "beta", "FLAG", false},
		{"project", "", "beta", "BETA", false},
		{"default project", "", "", "ALPHA", false},
		{"unknown project", "", "gamma", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSpace(newCfg(), tt.spaceFlag, tt.project)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "failed to select project") {
					t.Fatalf("expected project selection error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("resolveSpace = %q, want %q", got, tt.want)
			}
		})
	}

	legacy := &config.Config{Confluence: config.ConfluenceConfig{SpaceKey: "LEGACY"}}
	if got, _ := resolveSpace(legacy, "", ""); got != "LEGACY" {
		t.Fatalf("expected configured space key, got %q", got)
	}
}

func TestFindContent(t *testing.T) {
	mc := confluence.NewMockClient()
	mc.AddPage("42", "DOCS", "Answer", "<p>Life</p>")
	mc.AddPage("50", "DOCS", "2024", "<p>Numeric title</p>")
	ctx := context.Background()
	log := logger.New(false)

	page, err := findContent(ctx, mc, log, "DOCS", "42")
	if err != nil || page.ID != "42" {
		t.Fatalf("expected page by id, got %v %v", page, err)
	}

	page, err = findContent(ctx, mc, log, "DOCS", "Answer")
	if err != nil || page.ID != "42" {
		t.Fatalf("expected page by title, got %v %v", page, err)
	}

	// A numeric title falls back to a title lookup when no such id exists.
	page, err = findContent(ctx, mc, log, "DOCS", "2024")
	if err != nil || page.ID != "50" {
		t.Fatalf("expected numeric title fallback, got %v %v", page, err)
	}

	if _, err := findContent(ctx, mc, log, "DOCS", "Missing"); err == nil || !strings.Contains(err.Error(), "not found in space 'DOCS'") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := findContent(ctx, mc, log, "", "Missing"); err == nil {
		t.Fatalf("expected error without space")
	}
}

func TestIsNumeric(t *testing.T) {
	cases := map[string]bool{
		"123": true,
		"000": true,
		"12a": false,
		"":    false,
		"-10": true,
	}
	for in, expected := range cases {
		if got := isNumeric(in); got != expected {
			t.Fatalf("isNumeric(%q)=%v expected %v", in, got, expected)
		}
	}
}

func TestCommandContextDefaults(t *testing.T) {
	if commandContext(nil) == nil {
		t.Fatalf("expected background context for nil command")
	}
	if commandContext(searchCmd) == nil {
		t.Fatalf("expected background context for unexecuted command")
	}
}
