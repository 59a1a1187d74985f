package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the Go/SQL type a filter value or sort key is coerced to
type Kind int

const (
	KindText Kind = iota
	KindDecimal
	KindInt
	KindTime
	KindID
)

// sqlType is the PostgreSQL type used to cast cursor values back into
// comparable column values.
func (k Kind) sqlType() string {
	switch k {
	case KindDecimal:
		return "numeric"
	case KindInt:
		return "bigint"
	case KindTime:
		return "timestamptz"
	case KindID:
		return "uuid"
	default:
		return "text"
	}
}

// parse coerces a raw client value. ok is false when the value must be
// treated as not supplied: nil, an empty string, or anything that does not
// convert to the kind.
func (k Kind) parse(raw any) (value any, ok bool) {
	if raw == nil {
		return nil, false
	}
	if s, isString := raw.(string); isString && s == "" {
		return nil, false
	}

	switch k {
	case KindText:
		s, isString := raw.(string)
		return s, isString
	case KindDecimal:
		return parseDecimal(raw)
	case KindInt:
		return parseInt(raw)
	case KindTime:
		return parseTime(raw)
	case KindID:
		return parseID(raw)
	}
	return nil, false
}

func parseDecimal(raw any) (any, bool) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	}
	return nil, false
}

func parseInt(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return nil, false
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(raw any) (any, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return nil, false
}

func parseID(raw any) (any, bool) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		return id, err == nil
	}
	return nil, false
}

// formatValue renders a sort key value for embedding in a cursor. The text
// form must round-trip through a PostgreSQL cast of kind.sqlType().
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uuid.UUID:
		return x.String()
	}
	b, _ := json.Marshal(v)
	return string(b)
}
