package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"", true},
		{"+1234567", true},
		{"+123456789012345", true},
		{"+123456", false},
		{"+1234567890123456", false},
		{"123-456-7890", true},
		{"1234567890", false},
		{"123-4567-890", false},
		{"+1 234 567 890", false},
		{"abc", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidPhone(tc.phone), "phone %q", tc.phone)
	}
}

func TestSumPricesIsExact(t *testing.T) {
	products := []*Product{
		{Price: decimal.RequireFromString("10.00")},
		{Price: decimal.RequireFromString("5.50")},
	}

	assert.True(t, SumPrices(products).Equal(decimal.RequireFromString("15.50")))
	assert.True(t, SumPrices(nil).Equal(decimal.Zero))
}

func TestProperty_SumPricesMatchesCents(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("summing prices never drifts from the integer cent sum", prop.ForAll(
		func(cents []int64) bool {
			products := make([]*Product, 0, len(cents))
			var want int64
			for _, c := range cents {
				products = append(products, &Product{Price: decimal.New(c, -2)})
				want += c
			}
			return SumPrices(products).Equal(decimal.New(want, -2))
		},
		gen.SliceOf(gen.Int64Range(1, 999999)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
