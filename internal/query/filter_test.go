package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFilters = FilterSet{
	{Key: "name", Alias: "nameIcontains", Column: "t.name", Op: OpContains, Kind: KindText},
	{Key: "price__gte", Alias: "priceGte", Column: "t.price", Op: OpGte, Kind: KindDecimal},
	{Key: "price__lte", Alias: "priceLte", Column: "t.price", Op: OpLte, Kind: KindDecimal},
	{Key: "stock__gte", Column: "t.stock", Op: OpGte, Kind: KindInt},
	{Key: "created_at__gte", Column: "t.created_at", Op: OpGte, Kind: KindTime},
	{Key: "phone_pattern", Column: "t.phone", Op: OpPrefix, Kind: KindText},
	{
		Key:    "product_id",
		Alias:  "productId",
		Column: "op.product_id",
		Op:     OpEq,
		Kind:   KindID,
		Via:    "EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = t.id AND %s)",
	},
}

func apply(filters Filters) *Builder {
	b := &Builder{}
	testFilters.Apply(b, filters)
	return b
}

func TestApply_NoFiltersImposeNoConstraint(t *testing.T) {
	b := apply(nil)

	assert.Empty(t, b.WhereClause())
	assert.Empty(t, b.Args())
}

func TestApply_ContainsIsCaseInsensitiveAndEscaped(t *testing.T) {
	b := apply(Filters{"name": "50%_off"})

	assert.Equal(t, `WHERE t.name ILIKE $1 ESCAPE '\'`, b.WhereClause())
	assert.Equal(t, []any{`%50\%\_off%`}, b.Args())
}

func TestApply_RangeBoundsAreIndependentAndInclusive(t *testing.T) {
	b := apply(Filters{"price__gte": "10", "price__lte": 20.5})

	assert.Equal(t, "WHERE t.price >= $1 AND t.price <= $2", b.WhereClause())
	args := b.Args()
	require.Len(t, args, 2)
	assert.True(t, args[0].(decimal.Decimal).Equal(decimal.NewFromInt(10)))
	assert.True(t, args[1].(decimal.Decimal).Equal(decimal.RequireFromString("20.5")))
}

func TestApply_ZeroIsARealBound(t *testing.T) {
	b := apply(Filters{"stock__gte": 0, "price__lte": json.Number("0")})

	assert.Equal(t, "WHERE t.price <= $1 AND t.stock >= $2", b.WhereClause())
	assert.Equal(t, int64(0), b.Args()[1])
}

func TestApply_EmptyAndNilValuesAreNotSupplied(t *testing.T) {
	b := apply(Filters{"name": "", "phone_pattern": "", "price__gte": nil, "product_id": ""})

	assert.Empty(t, b.WhereClause())
}

func TestApply_MalformedValuesAreIgnored(t *testing.T) {
	b := apply(Filters{
		"price__gte":      "cheap",
		"stock__gte":      "1.5",
		"created_at__gte": "yesterday",
		"product_id":      "not-a-uuid",
		"name":            42,
	})

	assert.Empty(t, b.WhereClause())
}

func TestApply_UnknownKeysAreIgnored(t *testing.T) {
	b := apply(Filters{"password": "x", "name__startswith": "a"})

	assert.Empty(t, b.WhereClause())
}

func TestApply_PhonePatternIsPrefixMatch(t *testing.T) {
	b := apply(Filters{"phone_pattern": "+1"})

	assert.Equal(t, `WHERE t.phone LIKE $1 ESCAPE '\'`, b.WhereClause())
	assert.Equal(t, []any{"+1%"}, b.Args())
}

func TestApply_RelationTraversalUsesExists(t *testing.T) {
	id := uuid.New()
	b := apply(Filters{"productId": id.String()})

	assert.Equal(t,
		"WHERE EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = t.id AND op.product_id = $1)",
		b.WhereClause(),
	)
	assert.Equal(t, []any{id}, b.Args())
}

func TestApply_KeyWinsOverAlias(t *testing.T) {
	b := apply(Filters{"name": "alice", "nameIcontains": "bob"})

	assert.Equal(t, []any{"%alice%"}, b.Args())
}

func TestApply_TimeLayouts(t *testing.T) {
	for _, raw := range []any{"2024-03-01", "2024-03-01T10:00:00Z", "2024-03-01T10:00:00", time.Now()} {
		b := apply(Filters{"created_at__gte": raw})
		assert.Equal(t, "WHERE t.created_at >= $1", b.WhereClause(), "value %v", raw)
	}
}
