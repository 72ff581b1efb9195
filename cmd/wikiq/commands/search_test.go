package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	"wikiq/internal/config"
	"wikiq/pkg/confluence"
	"wikiq/pkg/cql"
)

func resetSearchFlags() {
	searchType = ""
	searchSpaces = nil
	searchTitle = ""
	searchText = ""
	searchLabels = nil
	searchCreator = ""
	searchCreatedAfter = ""
	searchCreatedBefore = ""
	searchModifiedWithin = ""
	searchOrderBy = ""
	searchDesc = false
	searchRawCQL = ""
	searchCQLContext = ""
	searchLimit = 0
	searchStart = 0
	searchAll = false
	searchProject = ""
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{
			name:  "single clause",
			setup: func() { searchType = "page" },
			want:  `type = page`,
		},
		{
			name: "flags joined with and",
			setup: func() {
				searchType = "page"
				searchSpaces = []string{"DOCS"}
				searchTitle = "release"
				searchLabels = []string{"Draft"}
			},
			want: `(type = page and space = "DOCS" and title ~ "release" and label = "draft")`,
		},
		{
			name:  "several spaces",
			setup: func() { searchSpaces = []string{"A", "B"} },
			want:  `space in ("A", "B")`,
		},
		{
			name:  "current user as creator",
			setup: func() { searchCreator = "me" },
			want:  `creator = currentUser()`,
		},
		{
			name:  "named creator",
			setup: func() { searchCreator = "557058:abc" },
			want:  `creator = "557058:abc"`,
		},
		{
			name: "date range",
			setup: func() {
				searchCreatedAfter = "2024-01-02"
				searchCreatedBefore = "2024-02-01"
			},
			want: `(created > "2024-01-02 00:00" and created < "2024-02-01 00:00")`,
		},
		{
			name:  "modified within weeks",
			setup: func() { searchModifiedWithin = "2w" },
			want:  `lastmodified >= now("-2w")`,
		},
		{
			name: "raw cql combined with flags",
			setup: func() {
				searchRawCQL = `macro = toc`
				searchText = "kubernetes"
			},
			want: `((macro = toc) and text ~ "kubernetes")`,
		},
		{
			name: "raw disjunction keeps its precedence",
			setup: func() {
				searchRawCQL = `type = page or type = blogpost`
				searchSpaces = []string{"DOCS"}
			},
			want: `((type = page or type = blogpost) and space = "DOCS")`,
		},
		{
			name:  "raw cql with its own ordering used alone",
			setup: func() { searchRawCQL = ` type = page order by title ` },
			want:  `type = page order by title`,
		},
		{
			name: "order by inside a quoted value",
			setup: func() {
				searchRawCQL = `title ~ "order by"`
				searchOrderBy = "created"
			},
			want: `title ~ "order by" order by created`,
		},
		{
			name: "order by descending",
			setup: func() {
				searchType = "blogpost"
				searchOrderBy = "lastmodified"
				searchDesc = true
			},
			want: `type = blogpost order by lastmodified desc`,
		},
		{
			name: "order by server default direction",
			setup: func() {
				searchSpaces = []string{"DOCS"}
				searchText = "api"
				searchOrderBy = "Created"
			},
			want: `(space = "DOCS" and text ~ "api") order by created`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetSearchFlags()
			defer resetSearchFlags()
			tt.setup()

			query, err := buildSearchQuery(&config.Config{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := query.Render(); got != tt.want {
				t.Fatalf("query = %s\nwant    %s", got, tt.want)
			}
		})
	}
}

func TestBuildSearchQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		errText string
		invalid bool
	}{
		{"no flags", func() {}, "at least one search flag", false},
		{"desc without order", func() { searchType = "page"; searchDesc = true }, "--desc requires --order-by", false},
		{"unknown type", func() { searchType = "folder" }, "unknown content type", true},
		{"order by label", func() { searchType = "page"; searchOrderBy = "label" }, "cannot order by label", true},
		{"unknown order field", func() { searchType = "page"; searchOrderBy = "size" }, "unknown field", true},
		{"bad date", func() { searchCreatedAfter = "02/01/2024" }, "invalid --created-after", false},
		{"bad period", func() { searchModifiedWithin = "soon" }, "invalid --modified-within", false},
		{"short period", func() { searchModifiedWithin = "30s" }, "at least one minute", true},
		{"label with space", func() { searchLabels = []string{"two words"} }, "whitespace", true},
		{"raw ordering with flags", func() { searchRawCQL = "type = page ORDER BY title"; searchSpaces = []string{"DOCS"} }, "--cql with order by", false},
		{"raw ordering with order-by", func() { searchRawCQL = "type = page order by title"; searchOrderBy = "created" }, "--cql with order by", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetSearchFlags()
			defer resetSearchFlags()
			tt.setup()

			_, err := buildSearchQuery(&config.Config{})
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Fatalf("expected error containing %q, got %v", tt.errText, err)
			}
			if tt.invalid && !errors.Is(err, cql.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestBuildSearchQueryUsesProjectScope(t *testing.T) {
	resetSearchFlags()
	defer resetSearchFlags()

	cfg := &config.Config{Projects: []config.ProjectConfig{{Name: "core", SpaceKey: "CORE", Parent: "98765"}}}
	if err := cfg.SelectProject("core"); err != nil {
		t.Fatalf("select project: %v", err)
	}
	searchLabels = []string{"adr"}

	query, err := buildSearchQuery(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `(space = "CORE" and ancestor = 98765 and label = "adr")`
	if got := query.Render(); got != want {
		t.Fatalf("query = %s, want %s", got, want)
	}
}

func TestRunSearchPrintsResults(t *testing.T) {
	resetSearchFlags()
	defer resetSearchFlags()
	useTempConfig(t)

	mc := confluence.NewMockClient()
	a := mc.AddPage("1", "DOCS", "Release 1.0", "")
	b := mc.AddPage("2", "DOCS", "Release 2.0", "")
	mc.SearchResults = []confluence.Content{*a, *b}

	searchSpaces = []string{"DOCS"}
	searchTitle = "release"

	out := captureStdout(t, func() {
		withMockClient(t, mc, func() {
			if err := runSearch(nil, nil); err != nil {
				t.Fatalf("runSearch: %v", err)
			}
		})
	})

	if !strings.Contains(out, "Release 1.0 (ID: 1) [DOCS]") || !strings.Contains(out, "Release 2.0 (ID: 2) [DOCS]") {
		t.Fatalf("expected both results, got: %s", out)
	}
	if !strings.Contains(out, "https://example.atlassian.net/wiki/spaces/DOCS/pages/1") {
		t.Fatalf("expected web link, got: %s", out)
	}
	if !strings.Contains(out, "Found 2 result(s)") {
		t.Fatalf("expected summary, got: %s", out)
	}
	if len(mc.Searches) != 1 || mc.Searches[0] != `(space = "DOCS" and title ~ "release")` {
		t.Fatalf("unexpected searches: %v", mc.Searches)
	}
}

func TestRunSearchLimitAndAll(t *testing.T) {
	resetSearchFlags()
	defer resetSearchFlags()
	useTempConfig(t)

	mc := confluence.NewMockClient()
	for _, id := range []string{"1", "2", "3"} {
		mc.SearchResults = append(mc.SearchResults, *mc.AddPage(id, "DOCS", "Page "+id, ""))
	}
	searchType = "page"
	searchLimit = 2

	out := captureStdout(t, func() {
		withMockClient(t, mc, func() {
			if err := runSearch(nil, nil); err != nil {
				t.Fatalf("runSearch: %v", err)
			}
		})
	})
	if !strings.Contains(out, "Found 2 result(s)") {
		t.Fatalf("expected limit to apply, got: %s", out)
	}

	searchAll = true
	out = captureStdout(t, func() {
		withMockClient(t, mc, func() {
			if err := runSearch(nil, nil); err != nil {
				t.Fatalf("runSearch: %v", err)
			}
		})
	})
	if !strings.Contains(out, "Found 3 result(s)") {
		t.Fatalf("expected every result with --all, got: %s", out)
	}
}

func TestRunSearchError(t *testing.T) {
	resetSearchFlags()
	defer resetSearchFlags()
	useTempConfig(t)

	mc := confluence.NewMockClient()
	mc.Err = &confluence.APIError{Operation: "search content", StatusCode: 400, Message: "bad cql"}
	searchType = "page"

	withMockClient(t, mc, func() {
		err := runSearch(nil, nil)
		if err == nil || !strings.Contains(err.Error(), "search failed") {
			t.Fatalf("expected search failure, got %v", err)
		}
	})
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"90m", 90 * time.Minute, false},
		{"12h", 12 * time.Hour, false},
		{"3d", 72 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"0d", 0, true},
		{"xd", 0, true},
		{"later", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePeriod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePeriod(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parsePeriod(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
