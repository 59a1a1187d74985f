package query

import (
	"strings"
)

// SortField describes a sortable key of an entity. Value extracts the key
// from a loaded entity so it can be embedded in a cursor.
type SortField[T any] struct {
	Key    string
	Column string
	Kind   Kind
	Value  func(T) any
}

// Ordering holds the sortable keys of an entity and the tiebreak that makes
// every ordering total. The tiebreak is always appended ascending and cannot
// be selected by clients.
type Ordering[T any] struct {
	Fields   []SortField[T]
	Tiebreak SortField[T]
}

type term[T any] struct {
	field SortField[T]
	desc  bool
}

// resolve turns client sort specifiers ("name", "-created_at", or
// comma-separated lists of them) into ordering terms. Unknown and repeated
// keys are dropped.
func (o Ordering[T]) resolve(orderBy []string) []term[T] {
	seen := make(map[string]bool)
	terms := make([]term[T], 0, len(orderBy)+1)

	for _, entry := range orderBy {
		for _, part := range strings.Split(entry, ",") {
			key := strings.TrimSpace(part)
			desc := strings.HasPrefix(key, "-")
			key = strings.TrimPrefix(key, "-")
			if key == "" || seen[key] {
				continue
			}

			field, ok := o.lookup(key)
			if !ok {
				continue
			}
			seen[key] = true
			terms = append(terms, term[T]{field: field, desc: desc})
		}
	}

	return append(terms, term[T]{field: o.Tiebreak})
}

func (o Ordering[T]) lookup(key string) (SortField[T], bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return SortField[T]{}, false
}

// signature identifies an ordering inside cursors, e.g. "-price,name,seq".
func signature[T any](terms []term[T]) string {
	keys := make([]string, len(terms))
	for i, t := range terms {
		keys[i] = t.field.Key
		if t.desc {
			keys[i] = "-" + keys[i]
		}
	}
	return strings.Join(keys, ",")
}

// orderClause renders ORDER BY terms; reverse flips every direction for
// backward pagination.
func orderClause[T any](terms []term[T], reverse bool) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		dir := "ASC"
		if t.desc != reverse {
			dir = "DESC"
		}
		parts[i] = t.field.Column + " " + dir
	}
	return strings.Join(parts, ", ")
}
