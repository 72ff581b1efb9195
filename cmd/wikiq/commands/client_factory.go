package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/logger"
)

// newConfluenceClient is a package-level variable to allow test injection of a mock.
// Production code uses the real client constructor; tests can override this.
var newConfluenceClient = func(cfg *config.Config, log *logger.Logger) (confluence.ConfluenceClient, error) {
	opts := []confluence.ClientOption{
		confluence.WithTimeout(cfg.Timeout()),
		confluence.WithLogger(log),
	}
	if cfg.AuthMode() == config.AuthBearer {
		opts = append(opts, confluence.WithBearerToken(cfg.Confluence.APIToken))
	} else {
		opts = append(opts, confluence.WithBasicAuth(cfg.Confluence.Username, cfg.Confluence.APIToken))
	}
	if expand := cfg.Expand(); expand != nil {
		e := confluence.DefaultExpand()
		e.Search = expand
		opts = append(opts, confluence.WithExpand(e))
	}

	client, err := confluence.NewClient(cfg.Confluence.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// loadSession loads the config with the given loader and builds a client
// from it.
func loadSession(loader func(string) (*config.Config, error)) (*config.Config, confluence.ConfluenceClient, *logger.Logger, error) {
	log := logger.New(verbose)

	cfg, err := loader(config.ResolveConfigPath(configFile))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := newConfluenceClient(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create client: %w", err)
	}
	return cfg, client, log, nil
}

// resolveSpace picks the space key for a command. Precedence: the --space
// flag, the --project flag, the configured space key, then the first
// project.
func resolveSpace(cfg *config.Config, spaceFlag, project string) (string, error) {
	if project != "" {
		if err := cfg.SelectProject(project); err != nil {
			return "", fmt.Errorf("failed to select project: %w", err)
		}
	} else if spaceFlag == "" {
		cfg.ApplyDefaultProject()
	}
	if spaceFlag != "" {
		return spaceFlag, nil
	}
	return cfg.Confluence.SpaceKey, nil
}

// findContent looks a page up by id when the input is numeric, falling back
// to a title lookup in the space.
func findContent(ctx context.Context, client confluence.ConfluenceClient, log *logger.Logger, spaceKey, idOrTitle string) (*confluence.Content, error) {
	if isNumeric(idOrTitle) {
		log.Debug("Attempting to find page by ID: %s", idOrTitle)
		page, err := client.Contents().Get(ctx, idOrTitle)
		if err == nil {
			return page, nil
		}
		if !confluence.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get page: %w", err)
		}
		log.Debug("Page %s not found by ID, trying as title", idOrTitle)
	}

	if spaceKey == "" {
		return nil, fmt.Errorf("page '%s' not found", idOrTitle)
	}
	log.Debug("Attempting to find page by title: %s", idOrTitle)
	page, err := client.Contents().FindByTitle(ctx, spaceKey, idOrTitle, confluence.TypePage)
	if err != nil {
		return nil, fmt.Errorf("failed to find page by title: %w", err)
	}
	if page == nil {
		return nil, fmt.Errorf("page '%s' not found in space '%s'", idOrTitle, spaceKey)
	}
	return page, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
