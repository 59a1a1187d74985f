// Package query turns client supplied filters, sort keys and cursors into
// parameterized PostgreSQL queries.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Filters maps a filter key (e.g. "price__gte") or its alias
// (e.g. "priceGte") to a raw client value.
type Filters map[string]any

// Operator is the comparison a filter field applies to its column
type Operator int

const (
	OpContains Operator = iota
	OpGte
	OpLte
	OpPrefix
	OpEq
)

// FilterField describes one recognized filter key of an entity.
type FilterField struct {
	Key    string
	Alias  string
	Column string
	Op     Operator
	Kind   Kind
	// Via, when set, is an EXISTS template with a single %s that receives the
	// predicate. It is used to traverse to-many relations without join fan-out.
	Via string
}

// FilterSet is the fixed descriptor table for one entity
type FilterSet []FilterField

// Builder accumulates WHERE predicates and their positional arguments.
type Builder struct {
	where []string
	args  []any
}

// Arg registers a value and returns its $n placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// Where adds a predicate that is ANDed with the others.
func (b *Builder) Where(predicate string) {
	b.where = append(b.where, predicate)
}

// WhereClause renders the accumulated predicates, or "" when there are none.
func (b *Builder) WhereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.where, " AND ")
}

// Args returns a copy of the positional arguments registered so far.
func (b *Builder) Args() []any {
	return append([]any(nil), b.args...)
}

// Apply adds one predicate per supplied filter. Fields are visited in table
// order so the generated SQL is deterministic. Keys that are not in the table
// are ignored, as are values that are empty or do not coerce to the field's
// kind. If both the key and its alias are present the key wins.
func (s FilterSet) Apply(b *Builder, filters Filters) {
	for _, f := range s {
		raw, present := filters[f.Key]
		if !present && f.Alias != "" {
			raw, present = filters[f.Alias]
		}
		if !present {
			continue
		}

		value, ok := f.Kind.parse(raw)
		if !ok {
			continue
		}

		b.Where(f.predicate(b, value))
	}
}

func (f FilterField) predicate(b *Builder, value any) string {
	var pred string
	switch f.Op {
	case OpContains:
		pattern := "%" + escapeLike(value.(string)) + "%"
		pred = fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, f.Column, b.Arg(pattern))
	case OpPrefix:
		pattern := escapeLike(value.(string)) + "%"
		pred = fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, f.Column, b.Arg(pattern))
	case OpGte:
		pred = fmt.Sprintf("%s >= %s", f.Column, b.Arg(value))
	case OpLte:
		pred = fmt.Sprintf("%s <= %s", f.Column, b.Arg(value))
	default:
		pred = fmt.Sprintf("%s = %s", f.Column, b.Arg(value))
	}

	if f.Via != "" {
		return fmt.Sprintf(f.Via, pred)
	}
	return pred
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes a user string match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
