package query

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/ohrlando/stream-list/errors"
	"github.com/ohrlando/stream-list/util"
)

// Op is a comparison operator.
type Op string

// Supported operators.
const (
	OpEq       Op = "="
	OpNe       Op = "!="
	OpGt       Op = ">"
	OpGte      Op = ">="
	OpLt       Op = "<"
	OpLte      Op = "<="
	OpContains Op = "~"
)

// Two-character operators are tried first at every position.
var operators = []Op{OpNe, OpGte, OpLte, OpEq, OpGt, OpLt, OpContains}

// Condition compares one record field against a literal.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// ParseCondition parses "field<op>value", e.g. "age>=30" or "name~ann".
// The leftmost operator splits the expression; the value may be empty.
func ParseCondition(expr string) (Condition, error) {
	for i := range len(expr) {
		for _, op := range operators {
			if !strings.HasPrefix(expr[i:], string(op)) {
				continue
			}
			field := util.SanitizeString(expr[:i])
			if field == "" {
				return Condition{}, errors.InvalidInput("where", fmt.Sprintf("missing field in %q", expr))
			}
			return Condition{
				Field: field,
				Op:    op,
				Value: strings.TrimSpace(expr[i+len(op):]),
			}, nil
		}
	}
	return Condition{}, errors.InvalidFormat("where", "field<op>value with op one of = != > >= < <= ~").
		WithDetail("expression", expr)
}

// ParseConditions parses every expression, stopping at the first error.
func ParseConditions(exprs []string) ([]Condition, error) {
	conds := make([]Condition, 0, len(exprs))
	for _, expr := range exprs {
		c, err := ParseCondition(expr)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// String returns the condition in the form accepted by ParseCondition.
func (c Condition) String() string {
	return c.Field + string(c.Op) + c.Value
}

// Match reports whether r satisfies the condition.
func (c Condition) Match(r Record) bool {
	v, ok := r.Get(c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpContains:
		return strings.Contains(valueString(v), c.Value)
	case OpEq:
		return compare(v, c.Value) == 0
	case OpNe:
		return compare(v, c.Value) != 0
	case OpGt:
		return compare(v, c.Value) > 0
	case OpGte:
		return compare(v, c.Value) >= 0
	case OpLt:
		return compare(v, c.Value) < 0
	case OpLte:
		return compare(v, c.Value) <= 0
	default:
		return false
	}
}

// compare orders v against the literal: numerically when both sides are
// numbers, as strings otherwise.
func compare(v any, literal string) int {
	if a, ok := numeric(v); ok {
		if b, ok := numeric(literal); ok {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(valueString(v), literal)
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

// valueString renders a field value the way it is compared and written to CSV.
func valueString(v any) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
