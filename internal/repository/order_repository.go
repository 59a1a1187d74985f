package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/domain"
	"crm-api/internal/query"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	WithTx(tx database.DBTX) OrderRepository
	// Create inserts the order and one order_products row per product.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Order], error)
}

const (
	orderFrom    = "orders o JOIN customers c ON c.id = o.customer_id"
	orderColumns = "o.id, o.seq, o.customer_id, o.total_amount, o.order_date, o.created_at, " + customerColumns
)

var orderSource = query.Source[*domain.Order]{
	From:    orderFrom,
	Columns: orderColumns,
	Filters: query.FilterSet{
		{Key: "total_amount__gte", Alias: "totalAmountGte", Column: "o.total_amount", Op: query.OpGte, Kind: query.KindDecimal},
		{Key: "total_amount__lte", Alias: "totalAmountLte", Column: "o.total_amount", Op: query.OpLte, Kind: query.KindDecimal},
		{Key: "order_date__gte", Alias: "orderDateGte", Column: "o.order_date", Op: query.OpGte, Kind: query.KindTime},
		{Key: "order_date__lte", Alias: "orderDateLte", Column: "o.order_date", Op: query.OpLte, Kind: query.KindTime},
		{Key: "customer_name", Alias: "customerName", Column: "c.name", Op: query.OpContains, Kind: query.KindText},
		{
			Key: "product_name", Alias: "productName", Column: "p.name", Op: query.OpContains, Kind: query.KindText,
			Via: "EXISTS (SELECT 1 FROM order_products op JOIN products p ON p.id = op.product_id WHERE op.order_id = o.id AND %s)",
		},
		{
			Key: "product_id", Alias: "productId", Column: "op.product_id", Op: query.OpEq, Kind: query.KindID,
			Via: "EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = o.id AND %s)",
		},
	},
	Ordering: query.Ordering[*domain.Order]{
		Fields: []query.SortField[*domain.Order]{
			{Key: "total_amount", Column: "o.total_amount", Kind: query.KindDecimal, Value: func(o *domain.Order) any { return o.TotalAmount }},
			{Key: "order_date", Column: "o.order_date", Kind: query.KindTime, Value: func(o *domain.Order) any { return o.OrderDate }},
			{Key: "created_at", Column: "o.created_at", Kind: query.KindTime, Value: func(o *domain.Order) any { return o.CreatedAt }},
		},
		Tiebreak: query.SortField[*domain.Order]{
			Key: "seq", Column: "o.seq", Kind: query.KindInt, Value: func(o *domain.Order) any { return o.Seq },
		},
	},
	Scan: scanOrder,
}

func scanOrder(row query.Scanner) (*domain.Order, error) {
	order := &domain.Order{Customer: &domain.Customer{}, Products: []*domain.Product{}}
	c := order.Customer
	err := row.Scan(
		&order.ID,
		&order.Seq,
		&order.CustomerID,
		&order.TotalAmount,
		&order.OrderDate,
		&order.CreatedAt,
		&c.ID,
		&c.Seq,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

type orderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db database.DBTX) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx database.DBTX) OrderRepository {
	return &orderRepository{db: tx}
}

// Create should run inside a transaction so the order and its product links
// are written together.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}

	query := `
		INSERT INTO orders (id, customer_id, total_amount, order_date)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.TotalAmount,
		order.OrderDate,
	).Scan(&order.Seq, &order.CreatedAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(order.Products) == 0 {
		return nil
	}

	values := make([]string, len(order.Products))
	args := make([]any, 0, len(order.Products)+1)
	args = append(args, order.ID)
	for i, p := range order.Products {
		values[i] = fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, p.ID)
	}

	linkQuery := "INSERT INTO order_products (order_id, product_id) VALUES " + strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, linkQuery, args...); err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to link order products: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its customer and products
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM ` + orderFrom + ` WHERE o.id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadProducts(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// List returns one page of orders matching filters in the requested order.
// Customers are joined and products are fetched for the whole page at once.
func (r *orderRepository) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Order], error) {
	result, err := orderSource.List(ctx, r.db, filters, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if err := r.loadProducts(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) loadProducts(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	args := make([]any, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		args[i] = o.ID
	}

	query := fmt.Sprintf(`
		SELECT op.order_id, %s
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id IN (%s)
		ORDER BY p.seq
	`, productColumns, placeholders(1, len(orders)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		p := &domain.Product{}
		if err := rows.Scan(&orderID, &p.ID, &p.Seq, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan order product: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Products = append(o.Products, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order products: %w", err)
	}
	return nil
}
