package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog item that orders can reference
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Seq       int64           `json:"-" db:"seq"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// SumPrices adds up product prices with fixed-point arithmetic.
// An empty slice sums to 0.00.
func SumPrices(products []*Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total.Round(2)
}
