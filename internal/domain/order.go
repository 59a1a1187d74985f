package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order links one customer to a set of products. TotalAmount is a snapshot
// taken when the order was created and is not recalculated afterwards.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Seq         int64           `json:"-" db:"seq"`
	CustomerID  uuid.UUID       `json:"customer_id" db:"customer_id"`
	Customer    *Customer       `json:"customer,omitempty" db:"-"`
	Products    []*Product      `json:"products" db:"-"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	OrderDate   time.Time       `json:"order_date" db:"order_date"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
