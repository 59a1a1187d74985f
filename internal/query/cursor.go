package query

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCursor is returned when a cursor does not decode or was issued
// for a different ordering.
var ErrInvalidCursor = errors.New("invalid cursor")

type cursorPayload struct {
	Order  string   `json:"o"`
	Values []string `json:"v"`
}

func encodeCursor[T any](terms []term[T], item T) string {
	payload := cursorPayload{
		Order:  signature(terms),
		Values: make([]string, len(terms)),
	}
	for i, t := range terms {
		payload.Values[i] = formatValue(t.field.Value(item))
	}

	b, _ := json.Marshal(payload)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor[T any](cursor string, terms []term[T]) ([]string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrInvalidCursor
	}

	if payload.Order != signature(terms) || len(payload.Values) != len(terms) {
		return nil, ErrInvalidCursor
	}

	return payload.Values, nil
}

// keyset builds the predicate selecting rows strictly after (or strictly
// before) the cursor position in the given ordering:
//
//	(t1 > v1) OR (t1 = v1 AND t2 > v2) OR ...
//
// with the comparison flipped for descending terms.
func keyset[T any](b *Builder, terms []term[T], values []string, after bool) string {
	placeholders := make([]string, len(terms))
	for i, t := range terms {
		placeholders[i] = b.Arg(values[i]) + "::" + t.field.Kind.sqlType()
	}

	branches := make([]string, 0, len(terms))
	for i, t := range terms {
		parts := make([]string, 0, i+1)
		for j := 0; j < i; j++ {
			parts = append(parts, fmt.Sprintf("%s = %s", terms[j].field.Column, placeholders[j]))
		}

		op := "<"
		if after != t.desc {
			op = ">"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", t.field.Column, op, placeholders[i]))
		branches = append(branches, "("+strings.Join(parts, " AND ")+")")
	}

	return "(" + strings.Join(branches, " OR ") + ")"
}
