package cql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rendered returns a function that fails t on a builder error and renders
// the clause otherwise, so builder calls can be passed straight in.
func rendered(t *testing.T) func(*Clause, error) string {
	return func(c *Clause, err error) string {
		t.Helper()
		require.NoError(t, err)
		return c.Render()
	}
}

func TestUserClause(t *testing.T) {
	tests := []struct {
		name string
		got  func() (*Clause, error)
		want string
	}{
		{"creator is", func() (*Clause, error) { return Creator().Is("5b10a2844c20165700ede21g") }, `creator = "5b10a2844c20165700ede21g"`},
		{"contributor is not", func() (*Clause, error) { return Contributor().IsNot("jdoe") }, `contributor != "jdoe"`},
		{"mention in", func() (*Clause, error) { return Mention().In("a", "b") }, `mention in ("a", "b")`},
		{"watcher not in", func() (*Clause, error) { return Watcher().NotIn("a") }, `watcher not in ("a")`},
		{"favourite current user", func() (*Clause, error) { return Favourite().IsCurrentUser(), nil }, `favourite = currentUser()`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.got()
			assert.Equal(t, tt.want, rendered(t)(c, err))
		})
	}
}

func TestUserClauseRejectsEmpty(t *testing.T) {
	_, err := Creator().Is("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Creator().IsNot("   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Watcher().In()
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Watcher().In("a", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDatetimeClause(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, `created = "2024-03-05 14:30"`, rendered(t)(Created().On(ts)))
	assert.Equal(t, `created < "2024-03-05 14:30"`, rendered(t)(Created().Before(ts)))
	assert.Equal(t, `created <= "2024-03-05 14:30"`, rendered(t)(Created().BeforeOrOn(ts)))
	assert.Equal(t, `lastmodified > "2024-03-05 14:30"`, rendered(t)(LastModified().After(ts)))
	assert.Equal(t, `lastmodified >= "2024-03-05 14:30"`, rendered(t)(LastModified().AfterOrOn(ts)))

	_, err := Created().On(time.Time{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDatetimeClauseWithinLast(t *testing.T) {
	tests := []struct {
		period time.Duration
		want   string
	}{
		{14 * 24 * time.Hour, `created >= now("-2w")`},
		{3 * 24 * time.Hour, `created >= now("-3d")`},
		{5 * time.Hour, `created >= now("-5h")`},
		{90 * time.Minute, `created >= now("-90m")`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rendered(t)(Created().WithinLast(tt.period)))
	}

	_, err := Created().WithinLast(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Created().WithinLast(30 * time.Second)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTypeClause(t *testing.T) {
	assert.Equal(t, "type = page", Type().IsPage().Render())
	assert.Equal(t, "type = blogpost", Type().IsBlogPost().Render())
	assert.Equal(t, "type = attachment", Type().IsAttachment().Render())
	assert.Equal(t, "type = comment", Type().IsComment().Render())
	assert.Equal(t, "type = space", Type().IsSpace().Render())
	assert.Equal(t, "type = user", Type().IsUser().Render())

	assert.Equal(t, "type = blogpost", rendered(t)(Type().Is(TypeBlogPost)))
	assert.Equal(t, "type in (page, blogpost)", rendered(t)(Type().In(TypePage, TypeBlogPost)))

	_, err := Type().Is("folder")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Type().In()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSpaceClause(t *testing.T) {
	assert.Equal(t, `space = "TEST"`, rendered(t)(Space().Is("TEST")))
	assert.Equal(t, `space != "TEST"`, rendered(t)(Space().IsNot("TEST")))
	assert.Equal(t, `space in ("A", "B")`, rendered(t)(Space().In("A", "B")))
	assert.Equal(t, `space not in ("A")`, rendered(t)(Space().NotIn("A")))

	_, err := Space().Is("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTextAndTitleClause(t *testing.T) {
	assert.Equal(t, `text ~ "foo"`, rendered(t)(Text().Contains("foo")))
	assert.Equal(t, `text !~ "foo"`, rendered(t)(Text().DoesNotContain("foo")))
	assert.Equal(t, `title = "Test Home"`, rendered(t)(Title().Is("Test Home")))
	assert.Equal(t, `title != "Test Home"`, rendered(t)(Title().IsNot("Test Home")))
	assert.Equal(t, `title ~ "Home"`, rendered(t)(Title().Contains("Home")))
	assert.Equal(t, `title !~ "Home"`, rendered(t)(Title().DoesNotContain("Home")))
	assert.Equal(t, `title in ("a", "b")`, rendered(t)(Title().In("a", "b")))

	_, err := Text().Contains("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `text ~ "say \"hi\" C:\\temp"`, rendered(t)(Text().Contains(`say "hi" C:\temp`)))
}

func TestLabelClause(t *testing.T) {
	assert.Equal(t, `label = "release"`, rendered(t)(Label().Is("Release")))
	assert.Equal(t, `label != "draft"`, rendered(t)(Label().IsNot("DRAFT")))
	assert.Equal(t, `label in ("a", "b")`, rendered(t)(Label().In("A", "b")))
	assert.Equal(t, `label not in ("x")`, rendered(t)(Label().NotIn("x")))

	_, err := Label().Is("two words")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Label().In()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNormalizeLabel(t *testing.T) {
	l, err := NormalizeLabel("  Straße-Notes ")
	require.NoError(t, err)
	assert.Equal(t, "straße-notes", l)

	_, err = NormalizeLabel("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestContentClause(t *testing.T) {
	assert.Equal(t, "id = 950274", rendered(t)(ID().Is("950274")))
	assert.Equal(t, "ancestor = 12", rendered(t)(Ancestor().Is("12")))
	assert.Equal(t, "parent != 12", rendered(t)(Parent().IsNot("12")))
	assert.Equal(t, "content in (1, 2)", rendered(t)(Content().In("1", "2")))
	assert.Equal(t, "id not in (3)", rendered(t)(ID().NotIn("3")))

	for _, bad := range []string{"", "0", "-1", "att123", "1.5"} {
		_, err := ID().Is(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
	_, err := ID().In()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMacroClause(t *testing.T) {
	assert.Equal(t, "macro = toc", rendered(t)(Macro().Is("toc")))
	assert.Equal(t, "macro != jira", rendered(t)(Macro().IsNot("jira")))

	_, err := Macro().Is("table of contents")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuilderReturnsIndependentClauses(t *testing.T) {
	b := Space()
	a := Must(b.Is("A"))
	c := Must(b.Is("B"))
	require.NoError(t, a.Negate())

	assert.Equal(t, `space != "A"`, a.Render())
	assert.Equal(t, `space = "B"`, c.Render())
}
