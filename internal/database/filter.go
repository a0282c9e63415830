package database

import (
	"fmt"
	"strings"
)

// Filter composes an explicit list of optional predicate clauses over fixed
// columns into a WHERE fragment with positional arguments. Clauses are
// AND-composed in the order they were added; an empty filter yields an empty
// WHERE fragment. Call sites never assemble SQL strings ad hoc.
type Filter struct {
	conds []string
	args  []any
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Equal adds `col = value`.
func (f *Filter) Equal(col string, value any) *Filter {
	return f.add(col+" = %s", value)
}

// ILike adds a case-insensitive substring match on col.
func (f *Filter) ILike(col string, value string) *Filter {
	return f.add(col+" ILIKE %s", "%"+value+"%")
}

// Prefix adds a case-insensitive prefix match on col.
func (f *Filter) Prefix(col string, value string) *Filter {
	return f.add(col+" ILIKE %s", value+"%")
}

// GreaterOrEqual adds `col >= value`.
func (f *Filter) GreaterOrEqual(col string, value any) *Filter {
	return f.add(col+" >= %s", value)
}

// LessOrEqual adds `col <= value`.
func (f *Filter) LessOrEqual(col string, value any) *Filter {
	return f.add(col+" <= %s", value)
}

func (f *Filter) add(format string, value any) *Filter {
	f.args = append(f.args, value)
	f.conds = append(f.conds, fmt.Sprintf(format, fmt.Sprintf("$%d", len(f.args))))
	return f
}

// Empty reports whether no predicates were added.
func (f *Filter) Empty() bool {
	return len(f.conds) == 0
}

// Where renders the WHERE fragment (including the leading keyword) and the
// argument slice. An empty filter renders as "".
func (f *Filter) Where() (string, []any) {
	if len(f.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(f.conds, " AND "), f.args
}
