package cql

import (
	"fmt"
	"strings"
)

// Direction is the sort direction of an order directive.
type Direction int

const (
	// Unspecified leaves the direction to the server default for the field.
	Unspecified Direction = iota
	Ascending
	Descending
)

func (d Direction) suffix() string {
	switch d {
	case Ascending:
		return " asc"
	case Descending:
		return " desc"
	default:
		return ""
	}
}

// OrderDirective sorts query results by a single field.
type OrderDirective struct {
	Field     Field
	Direction Direction
}

func (o OrderDirective) String() string {
	return o.Field.String() + o.Direction.suffix()
}

// Expr is anything that renders to CQL text.
type Expr interface {
	Render() string
}

// Clause is a single CQL comparison with optional ordering, or an opaque
// literal. A Clause must not be mutated from several goroutines at once.
type Clause struct {
	field    Field
	operator Operator
	value    string
	orderBy  []OrderDirective

	literal   string
	isLiteral bool

	rendered string
	cached   bool
}

// NewClause returns a clause comparing field against an already formatted
// value.
func NewClause(field Field, operator Operator, value string) *Clause {
	return &Clause{field: field, operator: operator, value: value}
}

// Literal wraps pre-rendered CQL. Ordering and negation are rejected on a
// literal clause.
func Literal(cql string) *Clause {
	return &Clause{literal: cql, isLiteral: true}
}

func (c *Clause) Field() Field       { return c.field }
func (c *Clause) Operator() Operator { return c.operator }
func (c *Clause) Value() string      { return c.value }
func (c *Clause) IsLiteral() bool    { return c.isLiteral }

// OrderDirectives returns a copy of the directives in the order they were
// added.
func (c *Clause) OrderDirectives() []OrderDirective {
	out := make([]OrderDirective, len(c.orderBy))
	copy(out, c.orderBy)
	return out
}

// OrderBy sorts by field using the server default direction.
func (c *Clause) OrderBy(field Field) (*Clause, error) {
	return c.addOrder(field, Unspecified)
}

// OrderByAscending sorts by field, smallest first.
func (c *Clause) OrderByAscending(field Field) (*Clause, error) {
	return c.addOrder(field, Ascending)
}

// OrderByDescending sorts by field, largest first.
func (c *Clause) OrderByDescending(field Field) (*Clause, error) {
	return c.addOrder(field, Descending)
}

func (c *Clause) addOrder(field Field, direction Direction) (*Clause, error) {
	if c.isLiteral {
		return c, fmt.Errorf("%w: cannot order a literal clause", ErrInvalidOperation)
	}
	if !field.Valid() {
		return c, fmt.Errorf("%w: cannot order by %s", ErrInvalidArgument, field)
	}
	if !field.Orderable() {
		return c, fmt.Errorf("%w: cannot order by %s, it can have multiple values", ErrInvalidArgument, field)
	}
	c.orderBy = append(c.orderBy, OrderDirective{Field: field, Direction: direction})
	c.invalidate()
	return c, nil
}

// Negate replaces the operator with its inverse, e.g. = becomes != and
// ~ becomes !~.
func (c *Clause) Negate() error {
	if c.isLiteral {
		return fmt.Errorf("%w: cannot negate a literal clause", ErrInvalidOperation)
	}
	inverse, err := c.operator.Inverse()
	if err != nil {
		return err
	}
	c.operator = inverse
	c.invalidate()
	return nil
}

func (c *Clause) invalidate() {
	c.rendered = ""
	c.cached = false
}

// Render returns the CQL text of the clause. The result is cached until the
// clause is mutated again.
func (c *Clause) Render() string {
	if c == nil {
		return ""
	}
	if c.isLiteral {
		return c.literal
	}
	if c.cached {
		return c.rendered
	}

	var sb strings.Builder
	sb.WriteString(c.field.String())
	sb.WriteByte(' ')
	sb.WriteString(c.operator.String())
	sb.WriteByte(' ')
	sb.WriteString(c.value)
	if len(c.orderBy) > 0 {
		sb.WriteString(" order by ")
		for i, o := range c.orderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.String())
		}
	}

	c.rendered = sb.String()
	c.cached = true
	return c.rendered
}

// String implements fmt.Stringer.
func (c *Clause) String() string {
	return c.Render()
}

// Must returns c or panics when err is non-nil. It is meant for queries built
// from constants.
func Must(c *Clause, err error) *Clause {
	if err != nil {
		panic(err)
	}
	return c
}
