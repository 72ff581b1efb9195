package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is used when no --config flag is given.
	DefaultConfigFile = "config.yaml"

	// EnvConfig names a config file to use instead of the default.
	EnvConfig = "WIKIQ_CONFIG"

	DefaultTimeout     = 30 * time.Second
	DefaultSearchLimit = 25
)

const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
	Search     SearchConfig     `yaml:"search,omitempty"`
	Projects   []ProjectConfig  `yaml:"projects,omitempty"`

	// Project is the project selected by SelectProject or
	// ApplyDefaultProject.
	Project *ProjectConfig `yaml:"-"`
}

type ConfluenceConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username,omitempty"`
	APIToken string `yaml:"api_token"`
	Auth     string `yaml:"auth,omitempty"`
	SpaceKey string `yaml:"space_key,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

type SearchConfig struct {
	Limit      int      `yaml:"limit,omitempty"`
	CQLContext string   `yaml:"cql_context,omitempty"`
	Expand     []string `yaml:"expand,omitempty"`
}

// ProjectConfig scopes commands to a space and optionally to the page tree
// below Parent.
type ProjectConfig struct {
	Name     string `yaml:"name"`
	SpaceKey string `yaml:"space_key"`
	Parent   string `yaml:"parent,omitempty"`
}

// Load reads and fully validates a config file. A space key is required
// unless a project can supply one.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadForSearch loads config with relaxed validation for space_key; searches
// may span every space.
func LoadForSearch(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, requireSpace bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.validate(requireSpace); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// ResolveConfigPath picks the config file to use. WIKIQ_CONFIG replaces the
// default path, and a leading ~ is expanded to the home directory.
func ResolveConfigPath(path string) string {
	if env := os.Getenv(EnvConfig); env != "" && (path == "" || path == DefaultConfigFile) {
		path = env
	}
	if path == "" {
		path = DefaultConfigFile
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

func (c *Config) validate(requireSpace bool) error {
	if c.Confluence.BaseURL == "" {
		return fmt.Errorf("confluence.base_url is required")
	}
	switch c.AuthMode() {
	case AuthBasic:
		if c.Confluence.Username == "" {
			return fmt.Errorf("confluence.username is required")
		}
	case AuthBearer:
	default:
		return fmt.Errorf("confluence.auth must be %q or %q, got %q", AuthBasic, AuthBearer, c.Confluence.Auth)
	}
	if c.Confluence.APIToken == "" {
		return fmt.Errorf("confluence.api_token is required")
	}
	if c.Confluence.Timeout != "" {
		d, err := time.ParseDuration(c.Confluence.Timeout)
		if err != nil {
			return fmt.Errorf("confluence.timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("confluence.timeout must be positive")
		}
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search.limit must not be negative")
	}

	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("projects[%d].name is required", i)
		}
		if p.SpaceKey == "" {
			return fmt.Errorf("projects[%d].space_key is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate project name '%s'", p.Name)
		}
		seen[p.Name] = true
	}

	if requireSpace && c.Confluence.SpaceKey == "" && len(c.Projects) == 0 {
		return fmt.Errorf("confluence.space_key is required")
	}
	return nil
}

// AuthMode returns the configured authentication, basic when unset.
func (c *Config) AuthMode() string {
	if c.Confluence.Auth == "" {
		return AuthBasic
	}
	return strings.ToLower(c.Confluence.Auth)
}

// Timeout returns the HTTP timeout, DefaultTimeout when unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Confluence.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Expand returns the search expand values, or nil to keep the client
// defaults.
func (c *Config) Expand() []string {
	if len(c.Search.Expand) == 0 {
		return nil
	}
	return append([]string(nil), c.Search.Expand...)
}

// SearchLimit returns the page size for searches.
func (c *Config) SearchLimit() int {
	if c.Search.Limit <= 0 {
		return DefaultSearchLimit
	}
	return c.Search.Limit
}

// SelectProject makes the named project active and copies its space key
// into the Confluence section.
func (c *Config) SelectProject(name string) error {
	for i := range c.Projects {
		if c.Projects[i].Name == name {
			c.use(&c.Projects[i])
			return nil
		}
	}
	return fmt.Errorf("project '%s' not found", name)
}

// ApplyDefaultProject activates the first project when no space key is
// configured. It reports whether a project was applied.
func (c *Config) ApplyDefaultProject() bool {
	if len(c.Projects) == 0 || c.Confluence.SpaceKey != "" {
		return false
	}
	c.use(&c.Projects[0])
	return true
}

func (c *Config) use(p *ProjectConfig) {
	c.Project = p
	c.Confluence.SpaceKey = p.SpaceKey
}

// ParentPage returns the root page id of the active project, if any.
func (c *Config) ParentPage() string {
	if c.Project == nil {
		return ""
	}
	return c.Project.Parent
}
