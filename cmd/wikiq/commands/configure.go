package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wikiq/internal/config"
)

var (
	configureSets           []string
	configureAddProjects    []string
	configureRemoveProjects []string
	configureYes            bool
	configurePrint          bool
	configureNonInteractive bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create or edit the configuration file interactively or via flags",
	Long: `Interactively create or edit the wikiq configuration file (config.yaml by default).

Features:
- Interactive prompts for the Confluence connection, projects and search defaults
- Apply key=value overrides via --set
- Add projects via --add-project (e.g. --add-project "name=docs,space_key=DOCS,parent=12345")
- Remove projects via --remove-project <name>
- Non-interactive scripting with --non-interactive --yes --set ...
- Print resulting YAML with --print instead of writing
`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().StringArrayVar(&configureSets, "set", nil, "Set a config field using dotted path (e.g. confluence.base_url=http://example)")
	configureCmd.Flags().StringArrayVar(&configureAddProjects, "add-project", nil, "Add a project definition (e.g. \"name=docs,space_key=DOCS\")")
	configureCmd.Flags().StringArrayVar(&configureRemoveProjects, "remove-project", nil, "Remove an existing project by name (repeatable)")
	configureCmd.Flags().BoolVar(&configureYes, "yes", false, "Automatically confirm saving changes")
	configureCmd.Flags().BoolVar(&configurePrint, "print", false, "Print resulting YAML instead of writing to file")
	configureCmd.Flags().BoolVar(&configureNonInteractive, "non-interactive", false, "Disable interactive prompts (use with --set / --add-project)")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configFile)
	cfg, existed, err := loadOrInitConfig(path)
	if err != nil {
		return err
	}

	if err := applySetOperations(cfg, configureSets); err != nil {
		return err
	}
	if err := applyAddProjects(cfg, configureAddProjects); err != nil {
		return err
	}
	if err := applyRemoveProjects(cfg, configureRemoveProjects); err != nil {
		return err
	}

	interactive := !configureNonInteractive && len(args) == 0
	if interactive {
		if err := interactiveEdit(cfg, existed); err != nil {
			return err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	outYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if configurePrint {
		cmd.Print(string(outYAML))
		return nil
	}

	if !configureYes && interactive {
		confirm := false
		prompt := &survey.Confirm{Message: "Save configuration to " + path + "?", Default: true}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			cmd.Println("Aborted (no changes saved).")
			return nil
		}
	}

	if err := writeConfigFile(path, outYAML); err != nil {
		return err
	}
	cmd.Printf("Configuration saved to %s\n", path)
	return nil
}

func loadOrInitConfig(path string) (*config.Config, bool, error) {
	if fileExists(path) {
		cfg, err := config.LoadForSearch(path)
		if err != nil {
			return nil, true, err
		}
		return cfg, true, nil
	}
	return &config.Config{}, false, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func writeConfigFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func applySetOperations(cfg *config.Config, sets []string) error {
	for _, s := range sets {
		key, val, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("invalid --set value '%s' (expected key=value)", s)
		}
		if err := setField(cfg, key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func setField(cfg *config.Config, key, value string) error {
	switch key {
	case "confluence.base_url":
		cfg.Confluence.BaseURL = value
	case "confluence.username":
		cfg.Confluence.Username = value
	case "confluence.api_token":
		cfg.Confluence.APIToken = value
	case "confluence.auth":
		cfg.Confluence.Auth = value
	case "confluence.space_key":
		cfg.Confluence.SpaceKey = value
	case "confluence.timeout":
		cfg.Confluence.Timeout = value
	case "search.limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Search.Limit = n
	case "search.cql_context":
		cfg.Search.CQLContext = value
	case "search.expand":
		cfg.Search.Expand = splitList(value)
	default:
		return fmt.Errorf("unsupported key '%s'", key)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyAddProjects(cfg *config.Config, defs []string) error {
	for _, d := range defs {
		pConf, err := parseProjectDefinition(d)
		if err != nil {
			return err
		}
		upsertProject(cfg, pConf)
	}
	return nil
}

// upsertProject replaces a project with the same name or appends p.
func upsertProject(cfg *config.Config, p config.ProjectConfig) {
	for i, existing := range cfg.Projects {
		if existing.Name == p.Name {
			cfg.Projects[i] = p
			return
		}
	}
	cfg.Projects = append(cfg.Projects, p)
}

func applyRemoveProjects(cfg *config.Config, names []string) error {
	if len(names) == 0 {
		return nil
	}
	remove := map[string]bool{}
	for _, n := range names {
		remove[n] = true
	}
	var filtered []config.ProjectConfig
	for _, p := range cfg.Projects {
		if !remove[p.Name] {
			filtered = append(filtered, p)
		}
	}
	cfg.Projects = filtered
	return nil
}

func parseProjectDefinition(def string) (config.ProjectConfig, error) {
	pc := config.ProjectConfig{}
	for _, item := range strings.Split(def, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return pc, fmt.Errorf("invalid project token '%s' (expected key=value)", item)
		}
		switch k {
		case "name":
			pc.Name = v
		case "space_key":
			pc.SpaceKey = v
		case "parent":
			pc.Parent = v
		default:
			return pc, fmt.Errorf("unknown project field '%s'", k)
		}
	}
	if pc.Name == "" || pc.SpaceKey == "" {
		return pc, errors.New("project requires name and space_key")
	}
	return pc, nil
}

func validateConfig(c *config.Config) error {
	// Marshal and re-load using the loader's validation
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp("", "wikiq-validate-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if _, err := config.Load(tmp.Name()); err != nil {
		return err
	}
	return nil
}

// Interactive editing -------------------------------------------------------

func interactiveEdit(cfg *config.Config, existed bool) error {
	fmt.Println("Interactive configuration editor. Press Enter to accept defaults.")
	if existed {
		fmt.Println("Loaded existing configuration. You can modify sections.")
	}

	if err := promptConfluence(cfg); err != nil {
		return err
	}
	if err := promptProjects(cfg); err != nil {
		return err
	}
	return promptSearch(cfg)
}

func promptConfluence(cfg *config.Config) error {
	qs := []*survey.Question{
		{Name: "base_url", Prompt: &survey.Input{Message: "Confluence Base URL", Default: cfg.Confluence.BaseURL}, Validate: survey.Required},
		{Name: "auth", Prompt: &survey.Select{Message: "Authentication", Options: []string{config.AuthBasic, config.AuthBearer}, Default: cfg.AuthMode()}},
		{Name: "username", Prompt: &survey.Input{Message: "Confluence Username (basic auth only)", Default: cfg.Confluence.Username}},
		{Name: "api_token", Prompt: &survey.Password{Message: "API Token or Personal Access Token (leave blank to keep)"}},
		{Name: "space_key", Prompt: &survey.Input{Message: "Default Space Key (leave blank if using projects)", Default: cfg.Confluence.SpaceKey}},
		{Name: "timeout", Prompt: &survey.Input{Message: "Request Timeout", Default: cfg.Timeout().String()}},
	}
	answers := struct {
		BaseURL  string `survey:"base_url"`
		Auth     string `survey:"auth"`
		Username string `survey:"username"`
		APIToken string `survey:"api_token"`
		SpaceKey string `survey:"space_key"`
		Timeout  string `survey:"timeout"`
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	cfg.Confluence.BaseURL = answers.BaseURL
	cfg.Confluence.Auth = answers.Auth
	cfg.Confluence.Username = answers.Username
	if answers.APIToken != "" { // keep existing if blank
		cfg.Confluence.APIToken = answers.APIToken
	}
	cfg.Confluence.SpaceKey = answers.SpaceKey
	if answers.Timeout != config.DefaultTimeout.String() {
		cfg.Confluence.Timeout = answers.Timeout
	}
	return nil
}

func promptProjects(cfg *config.Config) error {
	for {
		var want bool
		msg := fmt.Sprintf("Add or edit a project? (current: %d)", len(cfg.Projects))
		if err := survey.AskOne(&survey.Confirm{Message: msg, Default: false}, &want); err != nil {
			return err
		}
		if !want {
			return nil
		}

		var name, spaceKey, parent string
		if err := survey.AskOne(&survey.Input{Message: "Project Name"}, &name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		if err := survey.AskOne(&survey.Input{Message: "Space Key"}, &spaceKey, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		if err := survey.AskOne(&survey.Input{Message: "Parent Page ID (optional)"}, &parent); err != nil {
			return err
		}

		upsertProject(cfg, config.ProjectConfig{Name: name, SpaceKey: spaceKey, Parent: parent})
	}
}

func promptSearch(cfg *config.Config) error {
	var edit bool
	if err := survey.AskOne(&survey.Confirm{Message: "Edit search defaults?", Default: false}, &edit); err != nil {
		return err
	}
	if !edit {
		return nil
	}
	qs := []*survey.Question{
		{Name: "limit", Prompt: &survey.Input{Message: "Results per page", Default: strconv.Itoa(cfg.SearchLimit())}},
		{Name: "cql_context", Prompt: &survey.Input{Message: "CQL context JSON (optional)", Default: cfg.Search.CQLContext}},
		{Name: "expand", Prompt: &survey.Input{Message: "Search expansions (comma list, optional)", Default: strings.Join(cfg.Search.Expand, ",")}},
	}
	answers := struct {
		Limit      string `survey:"limit"`
		CQLContext string `survey:"cql_context"`
		Expand     string `survey:"expand"`
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	if v, err := strconv.Atoi(answers.Limit); err == nil && v != config.DefaultSearchLimit {
		cfg.Search.Limit = v
	}
	cfg.Search.CQLContext = answers.CQLContext
	cfg.Search.Expand = splitList(answers.Expand)
	return nil
}
