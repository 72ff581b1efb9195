// Package cql builds Confluence Query Language expressions.
//
// Queries are composed from typed clause builders obtained through the
// package-level accessors (Creator, Created, Type, Space, ...) and joined
// with And / Or:
//
//	q := cql.And(cql.Type().IsPage(), cql.Must(cql.Text().Contains("release notes")))
//	// (type = page and text ~ "release notes")
package cql

import (
	"fmt"
	"strings"
)

// Field is a queryable attribute of Confluence content.
type Field int

const (
	FieldAncestor Field = iota + 1
	FieldContent
	FieldCreated
	FieldCreator
	FieldContributor
	FieldFavourite
	FieldID
	FieldLabel
	FieldLastModified
	FieldMacro
	FieldMention
	FieldParent
	FieldSpace
	FieldText
	FieldTitle
	FieldType
	FieldWatcher
)

var fieldTokens = map[Field]string{
	FieldAncestor:     "ancestor",
	FieldContent:      "content",
	FieldCreated:      "created",
	FieldCreator:      "creator",
	FieldContributor:  "contributor",
	FieldFavourite:    "favourite",
	FieldID:           "id",
	FieldLabel:        "label",
	FieldLastModified: "lastmodified",
	FieldMacro:        "macro",
	FieldMention:      "mention",
	FieldParent:       "parent",
	FieldSpace:        "space",
	FieldText:         "text",
	FieldTitle:        "title",
	FieldType:         "type",
	FieldWatcher:      "watcher",
}

// String returns the wire token of the field.
func (f Field) String() string {
	if token, ok := fieldTokens[f]; ok {
		return token
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Valid reports whether f is one of the enumerated fields.
func (f Field) Valid() bool {
	_, ok := fieldTokens[f]
	return ok
}

// Orderable reports whether results can be sorted by f. Multi-valued fields
// such as label cannot.
func (f Field) Orderable() bool {
	return f.Valid() && f != FieldLabel
}

// ParseField returns the field whose wire token equals s (case-insensitive).
func ParseField(s string) (Field, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	for f, t := range fieldTokens {
		if t == token {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field %q", ErrInvalidArgument, s)
}
