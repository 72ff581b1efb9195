package cql

import "strings"

// Raw is pre-rendered CQL text. And and Or return it so that their results
// can be combined again.
type Raw string

func (r Raw) Render() string { return string(r) }
func (r Raw) String() string { return string(r) }

// User fields.

func Creator() UserClause     { return UserClause{field: FieldCreator} }
func Contributor() UserClause { return UserClause{field: FieldContributor} }
func Mention() UserClause     { return UserClause{field: FieldMention} }
func Watcher() UserClause     { return UserClause{field: FieldWatcher} }
func Favourite() UserClause   { return UserClause{field: FieldFavourite} }

// Date fields.

func Created() DatetimeClause      { return DatetimeClause{field: FieldCreated} }
func LastModified() DatetimeClause { return DatetimeClause{field: FieldLastModified} }

// Content id fields.

func ID() ContentClause       { return ContentClause{field: FieldID} }
func Ancestor() ContentClause { return ContentClause{field: FieldAncestor} }
func Parent() ContentClause   { return ContentClause{field: FieldParent} }
func Content() ContentClause  { return ContentClause{field: FieldContent} }

func Type() TypeClause   { return TypeClause{} }
func Space() SpaceClause { return SpaceClause{} }
func Text() TextClause   { return TextClause{} }
func Title() TitleClause { return TitleClause{} }
func Label() LabelClause { return LabelClause{} }
func Macro() MacroClause { return MacroClause{} }

// And renders its operands immediately and joins them into one
// parenthesized conjunction: (a and b). A nil operand renders as empty text,
// so builder errors must be checked first; wrap constant builders in Must.
func And(left, right Expr, more ...Expr) Raw {
	return join("and", left, right, more)
}

// Or renders its operands immediately and joins them into one
// parenthesized disjunction: (a or b). Nil operands render as empty text,
// as for And.
func Or(left, right Expr, more ...Expr) Raw {
	return join("or", left, right, more)
}

func join(op string, left, right Expr, more []Expr) Raw {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(render(left))
	for _, e := range append([]Expr{right}, more...) {
		sb.WriteByte(' ')
		sb.WriteString(op)
		sb.WriteByte(' ')
		sb.WriteString(render(e))
	}
	sb.WriteByte(')')
	return Raw(sb.String())
}

func render(e Expr) string {
	if e == nil {
		return ""
	}
	return e.Render()
}
