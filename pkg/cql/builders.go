package cql

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UserClause compares a user field (creator, contributor, mention, watcher,
// favourite) against account ids or user names.
type UserClause struct {
	field Field
}

func (u UserClause) Is(user string) (*Clause, error) {
	return u.compare(OpEqualTo, user)
}

func (u UserClause) IsNot(user string) (*Clause, error) {
	return u.compare(OpNotEqualTo, user)
}

func (u UserClause) In(users ...string) (*Clause, error) {
	return quotedIn(u.field, OpIn, users)
}

func (u UserClause) NotIn(users ...string) (*Clause, error) {
	return quotedIn(u.field, OpNotIn, users)
}

// IsCurrentUser matches the user the request is authenticated as.
func (u UserClause) IsCurrentUser() *Clause {
	return NewClause(u.field, OpEqualTo, "currentUser()")
}

func (u UserClause) compare(op Operator, user string) (*Clause, error) {
	return quoted(u.field, op, user)
}

// DatetimeClause compares created or lastmodified against a point in time.
type DatetimeClause struct {
	field Field
}

func (d DatetimeClause) On(t time.Time) (*Clause, error) {
	return d.compare(OpEqualTo, t)
}

func (d DatetimeClause) Before(t time.Time) (*Clause, error) {
	return d.compare(OpLessThan, t)
}

func (d DatetimeClause) BeforeOrOn(t time.Time) (*Clause, error) {
	return d.compare(OpLessThanEqualTo, t)
}

func (d DatetimeClause) After(t time.Time) (*Clause, error) {
	return d.compare(OpGreaterThan, t)
}

func (d DatetimeClause) AfterOrOn(t time.Time) (*Clause, error) {
	return d.compare(OpGreaterThanEqualTo, t)
}

// WithinLast matches values newer than now minus period, e.g. a period of two
// weeks renders as >= now("-2w").
func (d DatetimeClause) WithinLast(period time.Duration) (*Clause, error) {
	v, err := formatRelative(d.field, period)
	if err != nil {
		return nil, err
	}
	return NewClause(d.field, OpGreaterThanEqualTo, v), nil
}

func (d DatetimeClause) compare(op Operator, t time.Time) (*Clause, error) {
	v, err := formatDate(d.field, t)
	if err != nil {
		return nil, err
	}
	return NewClause(d.field, op, v), nil
}

// ContentType is the value of the type field.
type ContentType string

const (
	TypePage       ContentType = "page"
	TypeBlogPost   ContentType = "blogpost"
	TypeAttachment ContentType = "attachment"
	TypeComment    ContentType = "comment"
	TypeSpace      ContentType = "space"
	TypeUser       ContentType = "user"
)

// Valid reports whether t is a content type CQL knows about.
func (t ContentType) Valid() bool {
	switch t {
	case TypePage, TypeBlogPost, TypeAttachment, TypeComment, TypeSpace, TypeUser:
		return true
	}
	return false
}

// TypeClause restricts results to a kind of content.
type TypeClause struct{}

func (TypeClause) IsPage() *Clause       { return NewClause(FieldType, OpEqualTo, string(TypePage)) }
func (TypeClause) IsBlogPost() *Clause   { return NewClause(FieldType, OpEqualTo, string(TypeBlogPost)) }
func (TypeClause) IsAttachment() *Clause { return NewClause(FieldType, OpEqualTo, string(TypeAttachment)) }
func (TypeClause) IsComment() *Clause    { return NewClause(FieldType, OpEqualTo, string(TypeComment)) }
func (TypeClause) IsSpace() *Clause      { return NewClause(FieldType, OpEqualTo, string(TypeSpace)) }
func (TypeClause) IsUser() *Clause       { return NewClause(FieldType, OpEqualTo, string(TypeUser)) }

func (TypeClause) Is(t ContentType) (*Clause, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidArgument, t)
	}
	return NewClause(FieldType, OpEqualTo, string(t)), nil
}

func (TypeClause) In(types ...ContentType) (*Clause, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: type needs at least one value", ErrInvalidArgument)
	}
	values := make([]string, 0, len(types))
	for _, t := range types {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidArgument, t)
		}
		values = append(values, string(t))
	}
	return NewClause(FieldType, OpIn, list(values)), nil
}

// SpaceClause matches the key of the space content lives in.
type SpaceClause struct{}

func (SpaceClause) Is(key string) (*Clause, error)    { return quoted(FieldSpace, OpEqualTo, key) }
func (SpaceClause) IsNot(key string) (*Clause, error) { return quoted(FieldSpace, OpNotEqualTo, key) }

func (SpaceClause) In(keys ...string) (*Clause, error) {
	return quotedIn(FieldSpace, OpIn, keys)
}

func (SpaceClause) NotIn(keys ...string) (*Clause, error) {
	return quotedIn(FieldSpace, OpNotIn, keys)
}

// TextClause runs a full text search over the content body.
type TextClause struct{}

func (TextClause) Contains(s string) (*Clause, error) { return quoted(FieldText, OpContains, s) }

func (TextClause) DoesNotContain(s string) (*Clause, error) {
	return quoted(FieldText, OpDoesNotContain, s)
}

// TitleClause matches the content title exactly or by text search.
type TitleClause struct{}

func (TitleClause) Is(title string) (*Clause, error)    { return quoted(FieldTitle, OpEqualTo, title) }
func (TitleClause) IsNot(title string) (*Clause, error) { return quoted(FieldTitle, OpNotEqualTo, title) }

func (TitleClause) Contains(s string) (*Clause, error) { return quoted(FieldTitle, OpContains, s) }

func (TitleClause) DoesNotContain(s string) (*Clause, error) {
	return quoted(FieldTitle, OpDoesNotContain, s)
}

func (TitleClause) In(titles ...string) (*Clause, error) {
	return quotedIn(FieldTitle, OpIn, titles)
}

// LabelClause matches content labels. Confluence stores labels in lower
// case, so values are folded before rendering.
type LabelClause struct{}

func (LabelClause) Is(label string) (*Clause, error)    { return labelClause(OpEqualTo, label) }
func (LabelClause) IsNot(label string) (*Clause, error) { return labelClause(OpNotEqualTo, label) }
func (LabelClause) In(labels ...string) (*Clause, error) {
	return labelListClause(OpIn, labels)
}
func (LabelClause) NotIn(labels ...string) (*Clause, error) {
	return labelListClause(OpNotIn, labels)
}

var labelCaser = cases.Lower(language.Und)

// NormalizeLabel folds a label to the form Confluence stores.
func NormalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("%w: label must not be empty", ErrInvalidArgument)
	}
	if strings.IndexFunc(label, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: label %q must not contain whitespace", ErrInvalidArgument, label)
	}
	return labelCaser.String(label), nil
}

func labelClause(op Operator, label string) (*Clause, error) {
	l, err := NormalizeLabel(label)
	if err != nil {
		return nil, err
	}
	return NewClause(FieldLabel, op, Quote(l)), nil
}

func labelListClause(op Operator, labels []string) (*Clause, error) {
	normalized := make([]string, 0, len(labels))
	for _, label := range labels {
		l, err := NormalizeLabel(label)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, l)
	}
	v, err := quotedList(FieldLabel, normalized)
	if err != nil {
		return nil, err
	}
	return NewClause(FieldLabel, op, v), nil
}

// ContentClause compares one of the content id fields (id, ancestor, parent,
// content) against numeric content ids.
type ContentClause struct {
	field Field
}

func (c ContentClause) Is(id string) (*Clause, error)    { return c.compare(OpEqualTo, id) }
func (c ContentClause) IsNot(id string) (*Clause, error) { return c.compare(OpNotEqualTo, id) }
func (c ContentClause) In(ids ...string) (*Clause, error) {
	return c.compareList(OpIn, ids)
}
func (c ContentClause) NotIn(ids ...string) (*Clause, error) {
	return c.compareList(OpNotIn, ids)
}

func (c ContentClause) compare(op Operator, id string) (*Clause, error) {
	v, err := formatContentID(c.field, id)
	if err != nil {
		return nil, err
	}
	return NewClause(c.field, op, v), nil
}

func (c ContentClause) compareList(op Operator, ids []string) (*Clause, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one value", ErrInvalidArgument, c.field)
	}
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		v, err := formatContentID(c.field, id)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return NewClause(c.field, op, list(values)), nil
}

// MacroClause matches content using a macro, e.g. macro = toc.
type MacroClause struct{}

var macroName = regexp.MustCompile(`^[a-z0-9_-]+$`)

func (MacroClause) Is(name string) (*Clause, error)    { return macroClause(OpEqualTo, name) }
func (MacroClause) IsNot(name string) (*Clause, error) { return macroClause(OpNotEqualTo, name) }

func macroClause(op Operator, name string) (*Clause, error) {
	if !macroName.MatchString(name) {
		return nil, fmt.Errorf("%w: invalid macro name %q", ErrInvalidArgument, name)
	}
	return NewClause(FieldMacro, op, name), nil
}

func quoted(field Field, op Operator, v string) (*Clause, error) {
	if err := requireValue(field, v); err != nil {
		return nil, err
	}
	return NewClause(field, op, Quote(v)), nil
}

func quotedIn(field Field, op Operator, values []string) (*Clause, error) {
	v, err := quotedList(field, values)
	if err != nil {
		return nil, err
	}
	return NewClause(field, op, v), nil
}
