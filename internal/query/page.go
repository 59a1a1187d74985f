package query

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
)

// Limits bounds page sizes
type Limits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultLimits is used when a request was not normalized by the caller.
var DefaultLimits = Limits{DefaultSize: 20, MaxSize: 100}

// PageRequest selects a window of an ordered result. First/After page
// forward, Last/Before page backward.
type PageRequest struct {
	First  *int
	After  string
	Last   *int
	Before string
}

// Normalize fills in the default page size and clamps sizes to [0, MaxSize].
func (p PageRequest) Normalize(l Limits) PageRequest {
	clamp := func(n *int) *int {
		v := *n
		if v < 0 {
			v = 0
		}
		if l.MaxSize > 0 && v > l.MaxSize {
			v = l.MaxSize
		}
		return &v
	}

	if p.First == nil && p.Last == nil {
		size := l.DefaultSize
		p.First = &size
	}
	if p.First != nil {
		p.First = clamp(p.First)
	}
	if p.Last != nil {
		p.Last = clamp(p.Last)
	}
	return p
}

// PageInfo describes where a page sits in the full result
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
}

// Page is one window of a filtered, ordered result
type Page[T any] struct {
	Items      []T      `json:"items"`
	TotalCount int      `json:"totalCount"`
	PageInfo   PageInfo `json:"pageInfo"`
}

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Source binds an entity's table expression, filter table and ordering.
type Source[T any] struct {
	From     string
	Columns  string
	Filters  FilterSet
	Ordering Ordering[T]
	Scan     func(Scanner) (T, error)
}

// List filters, orders and slices the source. Filters are applied first and
// determine TotalCount; cursors only narrow the window.
func (s Source[T]) List(ctx context.Context, db Queryer, filters Filters, orderBy []string, page PageRequest) (*Page[T], error) {
	if page.First == nil && page.Last == nil {
		page = page.Normalize(DefaultLimits)
	}
	terms := s.Ordering.resolve(orderBy)

	var afterValues, beforeValues []string
	var err error
	if page.After != "" {
		if afterValues, err = decodeCursor(page.After, terms); err != nil {
			return nil, err
		}
	}
	if page.Before != "" {
		if beforeValues, err = decodeCursor(page.Before, terms); err != nil {
			return nil, err
		}
	}

	b := &Builder{}
	s.Filters.Apply(b, filters)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", s.From, b.WhereClause())
	if err := db.QueryRowContext(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	if afterValues != nil {
		b.Where(keyset(b, terms, afterValues, true))
	}
	if beforeValues != nil {
		b.Where(keyset(b, terms, beforeValues, false))
	}

	backward := page.First == nil
	var size int
	if backward {
		size = *page.Last
	} else {
		size = *page.First
	}
	size = max(size, 0)

	listQuery := fmt.Sprintf(
		"SELECT %s FROM %s %s ORDER BY %s LIMIT %s",
		s.Columns, s.From, b.WhereClause(), orderClause(terms, backward), b.Arg(size+1),
	)

	rows, err := db.QueryContext(ctx, listQuery, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0, size+1)
	for rows.Next() {
		item, err := s.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	hasMore := len(items) > size
	if hasMore {
		items = items[:size]
	}
	if backward {
		slices.Reverse(items)
	}

	info := PageInfo{}
	if backward {
		info.HasPreviousPage = hasMore
		info.HasNextPage = page.Before != ""
	} else {
		info.HasNextPage = hasMore
		info.HasPreviousPage = page.After != ""
	}
	if len(items) > 0 {
		info.StartCursor = encodeCursor(terms, items[0])
		info.EndCursor = encodeCursor(terms, items[len(items)-1])
	}

	return &Page[T]{Items: items, TotalCount: total, PageInfo: info}, nil
}
