package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/domain"
	"crm-api/internal/query"
	"crm-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgNoProducts = "At least one product must be selected."

// OrderInput is one order to create. Ids are the client's strings; OrderDate
// defaults to the current time.
type OrderInput struct {
	CustomerID string
	ProductIDs []string
	OrderDate  *time.Time
}

// OrderResult is the outcome of CreateOrder
type OrderResult struct {
	Order  *domain.Order `json:"order"`
	Errors []string      `json:"errors"`
}

// OrderService defines the interface for order business logic
type OrderService interface {
	Create(ctx context.Context, input OrderInput) (*OrderResult, error)
	List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Order], error)
}

type orderService struct {
	customers  repository.CustomerRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	transactor database.Transactor
	logger     *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	transactor database.Transactor,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		customers:  customers,
		products:   products,
		orders:     orders,
		transactor: transactor,
		logger:     logger,
	}
}

// Create checks the customer, then the product list, then that every product
// exists, stopping at the first failure. The order, its product links and its
// total are written in the same transaction as those reads.
func (s *orderService) Create(ctx context.Context, input OrderInput) (*OrderResult, error) {
	var result *OrderResult

	err := s.transactor.WithTx(ctx, func(tx database.Tx) error {
		var err error
		result, err = s.create(ctx, tx, input)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if result.Order != nil {
		s.logger.Info("Order created",
			zap.String("order_id", result.Order.ID.String()),
			zap.String("customer_id", result.Order.CustomerID.String()),
			zap.String("total_amount", result.Order.TotalAmount.StringFixed(2)),
		)
	}
	return result, nil
}

func (s *orderService) create(ctx context.Context, tx database.Tx, input OrderInput) (*OrderResult, error) {
	reject := func(msg string) *OrderResult {
		return &OrderResult{Errors: []string{msg}}
	}

	customerID, err := uuid.Parse(strings.TrimSpace(input.CustomerID))
	if err != nil {
		return reject(fmt.Sprintf("Invalid customer ID: %s", input.CustomerID)), nil
	}
	customer, err := s.customers.WithTx(tx).FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return reject(fmt.Sprintf("Invalid customer ID: %s", input.CustomerID)), nil
		}
		return nil, err
	}

	if len(input.ProductIDs) == 0 {
		return reject(msgNoProducts), nil
	}

	// De-duplicate parseable ids, remembering the first spelling the client
	// used for each.
	var lookup []uuid.UUID
	raw := make(map[uuid.UUID]string)
	for _, pid := range input.ProductIDs {
		id, err := uuid.Parse(strings.TrimSpace(pid))
		if err != nil {
			continue
		}
		if _, dup := raw[id]; !dup {
			raw[id] = pid
			lookup = append(lookup, id)
		}
	}

	products, err := s.products.WithTx(tx).FindByIDs(ctx, lookup)
	if err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}

	missing := make([]string, 0)
	reported := make(map[string]bool)
	for _, pid := range input.ProductIDs {
		id, err := uuid.Parse(strings.TrimSpace(pid))
		if err == nil && found[id] {
			continue
		}
		key := pid
		if err == nil {
			key = raw[id]
		}
		if !reported[key] {
			reported[key] = true
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return reject(fmt.Sprintf("Invalid product ID(s): %s", strings.Join(missing, ", "))), nil
	}

	orderDate := time.Now().UTC()
	if input.OrderDate != nil && !input.OrderDate.IsZero() {
		orderDate = input.OrderDate.UTC()
	}

	order := &domain.Order{
		CustomerID:  customer.ID,
		Customer:    customer,
		Products:    products,
		TotalAmount: domain.SumPrices(products),
		OrderDate:   orderDate,
	}
	if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
		return nil, err
	}

	return &OrderResult{Order: order, Errors: []string{}}, nil
}

func (s *orderService) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Order], error) {
	return s.orders.List(ctx, filters, orderBy, page)
}
