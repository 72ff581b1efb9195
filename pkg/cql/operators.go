package cql

import "fmt"

// Operator is a CQL comparison operator.
type Operator int

const (
	OpEqualTo Operator = iota + 1
	OpNotEqualTo
	OpContains
	OpDoesNotContain
	OpIn
	OpNotIn
	OpGreaterThan
	OpGreaterThanEqualTo
	OpLessThan
	OpLessThanEqualTo
)

var operatorTokens = map[Operator]string{
	OpEqualTo:            "=",
	OpNotEqualTo:         "!=",
	OpContains:           "~",
	OpDoesNotContain:     "!~",
	OpIn:                 "in",
	OpNotIn:              "not in",
	OpGreaterThan:        ">",
	OpGreaterThanEqualTo: ">=",
	OpLessThan:           "<",
	OpLessThanEqualTo:    "<=",
}

// Operators lists every operator in declaration order.
func Operators() []Operator {
	return []Operator{
		OpEqualTo, OpNotEqualTo, OpContains, OpDoesNotContain, OpIn, OpNotIn,
		OpGreaterThan, OpGreaterThanEqualTo, OpLessThan, OpLessThanEqualTo,
	}
}

// String returns the wire token of the operator.
func (o Operator) String() string {
	if token, ok := operatorTokens[o]; ok {
		return token
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Valid reports whether o is one of the enumerated operators.
func (o Operator) Valid() bool {
	_, ok := operatorTokens[o]
	return ok
}

// Inverse returns the operator used when a clause is negated. The mapping is
// symmetric: the inverse of the inverse is the operator itself.
func (o Operator) Inverse() (Operator, error) {
	switch o {
	case OpEqualTo:
		return OpNotEqualTo, nil
	case OpNotEqualTo:
		return OpEqualTo, nil
	case OpContains:
		return OpDoesNotContain, nil
	case OpDoesNotContain:
		return OpContains, nil
	case OpIn:
		return OpNotIn, nil
	case OpNotIn:
		return OpIn, nil
	case OpGreaterThan:
		return OpLessThan, nil
	case OpLessThan:
		return OpGreaterThan, nil
	case OpGreaterThanEqualTo:
		return OpLessThanEqualTo, nil
	case OpLessThanEqualTo:
		return OpGreaterThanEqualTo, nil
	default:
		return 0, fmt.Errorf("%w: no inverse for %s", ErrInvariantViolation, o)
	}
}
