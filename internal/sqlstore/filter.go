package sqlstore

import (
	"fmt"
	"strings"
)

// Op is a comparison operator usable in a Filter.
type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "<>"
	OpLt      Op = "<"
	OpGt      Op = ">"
	OpIsNull  Op = "IS NULL"
	OpNotNull Op = "IS NOT NULL"
)

// Cond is one field/operator/value predicate.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Eq matches rows whose field equals value. A nil value matches NULL.
func Eq(field string, value any) Cond {
	if value == nil {
		return IsNull(field)
	}
	return Cond{Field: field, Op: OpEq, Value: value}
}

// Ne matches rows whose field is not equal to value.
func Ne(field string, value any) Cond { return Cond{Field: field, Op: OpNe, Value: value} }

// Lt matches rows whose field is less than value.
func Lt(field string, value any) Cond { return Cond{Field: field, Op: OpLt, Value: value} }

// Gt matches rows whose field is greater than value.
func Gt(field string, value any) Cond { return Cond{Field: field, Op: OpGt, Value: value} }

// IsNull matches rows whose field is NULL.
func IsNull(field string) Cond { return Cond{Field: field, Op: OpIsNull} }

// NotNull matches rows whose field is not NULL.
func NotNull(field string) Cond { return Cond{Field: field, Op: OpNotNull} }

// Filter is a conjunction of conditions. The zero Filter matches every row.
type Filter struct {
	conds []Cond
}

// Where combines conditions with AND.
func Where(conds ...Cond) Filter {
	return Filter{conds: append([]Cond(nil), conds...)}
}

// And returns a copy of f with the extra conditions appended.
func (f Filter) And(conds ...Cond) Filter {
	next := make([]Cond, 0, len(f.conds)+len(conds))
	next = append(next, f.conds...)
	next = append(next, conds...)
	return Filter{conds: next}
}

// Empty reports whether the filter has no conditions.
func (f Filter) Empty() bool {
	return len(f.conds) == 0
}

// String renders the filter for logs and error messages.
func (f Filter) String() string {
	if f.Empty() {
		return "(all rows)"
	}
	parts := make([]string, 0, len(f.conds))
	for _, c := range f.conds {
		switch c.Op {
		case OpIsNull, OpNotNull:
			parts = append(parts, fmt.Sprintf("%s %s", c.Field, c.Op))
		default:
			parts = append(parts, fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value))
		}
	}
	return strings.Join(parts, " AND ")
}

// clause renders a WHERE clause (including the keyword) and its arguments.
func (f Filter) clause() (string, []any, error) {
	if f.Empty() {
		return "", nil, nil
	}
	parts := make([]string, 0, len(f.conds))
	args := make([]any, 0, len(f.conds))
	for _, c := range f.conds {
		if err := validateName(c.Field); err != nil {
			return "", nil, err
		}
		switch c.Op {
		case OpIsNull, OpNotNull:
			parts = append(parts, quote(c.Field)+" "+string(c.Op))
		case OpEq, OpNe, OpLt, OpGt:
			parts = append(parts, quote(c.Field)+" "+string(c.Op)+" ?")
			args = append(args, c.Value)
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}
