package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/cql"
)

const searchDateLayout = "2006-01-02"

var (
	searchType           string
	searchSpaces         []string
	searchTitle          string
	searchText           string
	searchLabels         []string
	searchCreator        string
	searchCreatedAfter   string
	searchCreatedBefore  string
	searchModifiedWithin string
	searchOrderBy        string
	searchDesc           bool
	searchRawCQL         string
	searchCQLContext     string
	searchLimit          int
	searchStart          int
	searchAll            bool
	searchProject        string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search Confluence content with CQL",
	Long: `Search Confluence content. Flags are combined into a single CQL query
joined with "and". Use --cql to pass a raw query; it is parenthesized and
combined with any other flags given. A raw query with its own "order by" must
be used on its own.

Dates for --created-after and --created-before use the YYYY-MM-DD layout.
--modified-within accepts Go durations (90m, 12h) as well as days and weeks
(3d, 2w).`,
	Example: `  wikiq search --space DOCS --type page --title "release notes"
  wikiq search --label draft --label review --creator me
  wikiq search --text kubernetes --modified-within 2w --order-by lastmodified --desc
  wikiq search --cql 'type = blogpost and space = "TEAM"' --all`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := loadSession(config.LoadForSearch)
	if err != nil {
		return err
	}
	if searchProject != "" {
		if err := cfg.SelectProject(searchProject); err != nil {
			return fmt.Errorf("failed to select project: %w", err)
		}
	}

	query, err := buildSearchQuery(cfg)
	if err != nil {
		return err
	}
	log.Debug("CQL: %s", query.Render())

	details := confluence.SearchDetails{
		CQL:        query,
		CQLContext: searchCQLContext,
	}
	if details.CQLContext == "" {
		details.CQLContext = cfg.Search.CQLContext
	}
	details.Start = searchStart
	details.Limit = searchLimit
	if details.Limit == 0 {
		details.Limit = cfg.SearchLimit()
	}

	ctx := commandContext(cmd)
	count := 0
	more := false
	if searchAll {
		for content, err := range client.Contents().SearchAll(ctx, details) {
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			printSearchResult(client, content)
			count++
		}
	} else {
		result, err := client.Contents().Search(ctx, details)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		for i := range result.Results {
			printSearchResult(client, &result.Results[i])
		}
		count = len(result.Results)
		more = result.HasNext()
	}

	fmt.Printf("\nFound %d result(s)\n", count)
	if more {
		fmt.Printf("More results available; use --start %d or --all\n", details.Start+count)
	}
	return nil
}

func printSearchResult(client confluence.ConfluenceClient, content *confluence.Content) {
	space := ""
	if content.Space != nil {
		space = " [" + content.Space.Key + "]"
	}
	fmt.Printf("📄 %s (ID: %s)%s\n", content.Title, content.ID, space)
	if content.Links.WebUI != "" {
		if u, err := client.Contents().CreateWebUIURL(content.Links); err == nil {
			fmt.Printf("   %s\n", u)
		}
	}
}

// buildSearchQuery turns the search flags into one CQL expression.
func buildSearchQuery(cfg *config.Config) (cql.Expr, error) {
	var parts []cql.Expr
	add := func(c *cql.Clause, err error) error {
		if err != nil {
			return err
		}
		parts = append(parts, c)
		return nil
	}

	if searchType != "" {
		if err := add(cql.Type().Is(cql.ContentType(strings.ToLower(searchType)))); err != nil {
			return nil, err
		}
	}

	spaces := searchSpaces
	if len(spaces) == 0 && cfg.Project != nil {
		spaces = []string{cfg.Project.SpaceKey}
	}
	switch len(spaces) {
	case 0:
	case 1:
		if err := add(cql.Space().Is(spaces[0])); err != nil {
			return nil, err
		}
	default:
		if err := add(cql.Space().In(spaces...)); err != nil {
			return nil, err
		}
	}
	if parent := cfg.ParentPage(); parent != "" && isNumeric(parent) {
		if err := add(cql.Ancestor().Is(parent)); err != nil {
			return nil, err
		}
	}

	if searchTitle != "" {
		if err := add(cql.Title().Contains(searchTitle)); err != nil {
			return nil, err
		}
	}
	if searchText != "" {
		if err := add(cql.Text().Contains(searchText)); err != nil {
			return nil, err
		}
	}
	for _, label := range searchLabels {
		if err := add(cql.Label().Is(label)); err != nil {
			return nil, err
		}
	}
	switch strings.ToLower(searchCreator) {
	case "":
	case "me", "currentuser", "currentuser()":
		parts = append(parts, cql.Creator().IsCurrentUser())
	default:
		if err := add(cql.Creator().Is(searchCreator)); err != nil {
			return nil, err
		}
	}

	if searchCreatedAfter != "" {
		t, err := time.Parse(searchDateLayout, searchCreatedAfter)
		if err != nil {
			return nil, fmt.Errorf("invalid --created-after: %w", err)
		}
		if err := add(cql.Created().After(t)); err != nil {
			return nil, err
		}
	}
	if searchCreatedBefore != "" {
		t, err := time.Parse(searchDateLayout, searchCreatedBefore)
		if err != nil {
			return nil, fmt.Errorf("invalid --created-before: %w", err)
		}
		if err := add(cql.Created().Before(t)); err != nil {
			return nil, err
		}
	}
	if searchModifiedWithin != "" {
		d, err := parsePeriod(searchModifiedWithin)
		if err != nil {
			return nil, fmt.Errorf("invalid --modified-within: %w", err)
		}
		if err := add(cql.LastModified().WithinLast(d)); err != nil {
			return nil, err
		}
	}

	if raw := strings.TrimSpace(searchRawCQL); raw != "" {
		if hasOrderBy(raw) && (len(parts) > 0 || searchOrderBy != "") {
			return nil, fmt.Errorf("--cql with order by cannot be combined with other search flags or --order-by")
		}
		if len(parts) > 0 {
			raw = "(" + raw + ")"
		}
		parts = append([]cql.Expr{cql.Literal(raw)}, parts...)
	}

	var query cql.Expr
	switch len(parts) {
	case 0:
		return nil, fmt.Errorf("at least one search flag or --cql is required")
	case 1:
		query = parts[0]
	default:
		query = cql.And(parts[0], parts[1], parts[2:]...)
	}

	if searchOrderBy == "" {
		if searchDesc {
			return nil, fmt.Errorf("--desc requires --order-by")
		}
		return query, nil
	}
	field, err := cql.ParseField(searchOrderBy)
	if err != nil {
		return nil, err
	}
	if !field.Orderable() {
		return nil, fmt.Errorf("%w: cannot order by %s", cql.ErrInvalidArgument, field)
	}
	order := cql.OrderDirective{Field: field}
	if searchDesc {
		order.Direction = cql.Descending
	}
	return cql.Raw(query.Render() + " order by " + order.String()), nil
}

var (
	quotedCQL  = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	orderByCQL = regexp.MustCompile(`(?i)\border\s+by\b`)
)

// hasOrderBy reports whether a raw query carries its own ordering, ignoring
// quoted values.
func hasOrderBy(raw string) bool {
	return orderByCQL.MatchString(quotedCQL.ReplaceAllString(raw, `""`))
}

// parsePeriod extends time.ParseDuration with d (days) and w (weeks).
func parsePeriod(s string) (time.Duration, error) {
	var unit time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "w"):
		unit = 7 * 24 * time.Hour
	default:
		return time.ParseDuration(s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:len(s)-1]))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	return time.Duration(n) * unit, nil
}

func init() {
	rootCmd.AddCommand(searchCmd)

	f := searchCmd.Flags()
	f.StringVarP(&searchType, "type", "t", "", "Content type: page|blogpost|attachment|comment|space|user")
	f.StringSliceVarP(&searchSpaces, "space", "s", nil, "Space key (repeatable)")
	f.StringVar(&searchTitle, "title", "", "Title contains text")
	f.StringVar(&searchText, "text", "", "Full text search")
	f.StringSliceVarP(&searchLabels, "label", "l", nil, "Content label (repeatable, all must match)")
	f.StringVar(&searchCreator, "creator", "", "Creator account id, or 'me' for the current user")
	f.StringVar(&searchCreatedAfter, "created-after", "", "Created after date (YYYY-MM-DD)")
	f.StringVar(&searchCreatedBefore, "created-before", "", "Created before date (YYYY-MM-DD)")
	f.StringVar(&searchModifiedWithin, "modified-within", "", "Modified within period (e.g. 12h, 3d, 2w)")
	f.StringVar(&searchOrderBy, "order-by", "", "Field to order results by (e.g. created, lastmodified, title)")
	f.BoolVar(&searchDesc, "desc", false, "Order descending")
	f.StringVar(&searchRawCQL, "cql", "", "Raw CQL query")
	f.StringVar(&searchCQLContext, "cql-context", "", "CQL context JSON (overrides search.cql_context)")
	f.IntVar(&searchLimit, "limit", 0, "Maximum results per page (default search.limit)")
	f.IntVar(&searchStart, "start", 0, "Index of the first result")
	f.BoolVar(&searchAll, "all", false, "Follow pagination and return every result")
	f.StringVarP(&searchProject, "project", "P", "", "Project name defined in config to scope the search")
}
