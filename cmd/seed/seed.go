package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-api/internal/domain"
	"crm-api/internal/query"
	"crm-api/internal/service"

	"go.uber.org/zap"
)

type sampleProduct struct {
	name  string
	price string
	stock int
}

func strPtr(s string) *string { return &s }

var sampleCustomers = []service.CustomerInput{
	{Name: "Alice", Email: "alice@example.com", Phone: strPtr("+1234567890")},
	{Name: "Bob", Email: "bob@example.com", Phone: strPtr("123-456-7890")},
	{Name: "Carol", Email: "carol@example.com"},
}

var sampleProducts = []sampleProduct{
	{name: "Laptop", price: "999.99", stock: 10},
	{name: "Mouse", price: "19.99", stock: 100},
	{name: "Keyboard", price: "49.99", stock: 50},
}

var errNotEnoughData = errors.New("not enough data to create demo order")

// seeder writes the sample data through the services, so every row passes
// the same checks an API request would.
type seeder struct {
	customers service.CustomerService
	products  service.ProductService
	orders    service.OrderService
	logger    *zap.Logger
}

type seedReport struct {
	Customers []*domain.Customer
	Products  []*domain.Product
	Order     *domain.Order
}

// run is idempotent: records that already exist are looked up, not recreated.
func (s *seeder) run(ctx context.Context, withOrder bool) (*seedReport, error) {
	report := &seedReport{}

	var missing []service.CustomerInput
	for _, in := range sampleCustomers {
		existing, err := s.findCustomer(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			missing = append(missing, in)
		}
	}

	if len(missing) > 0 {
		result, err := s.customers.BulkCreate(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to create customers: %w", err)
		}
		for _, msg := range result.Errors {
			s.logger.Warn("Customer row rejected", zap.String("reason", msg))
		}
	}

	for _, in := range sampleCustomers {
		customer, err := s.findCustomer(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			report.Customers = append(report.Customers, customer)
		}
	}
	s.logger.Info("Customers ready", zap.Int("count", len(report.Customers)))

	for _, sp := range sampleProducts {
		product, err := s.ensureProduct(ctx, sp)
		if err != nil {
			return nil, err
		}
		if product != nil {
			report.Products = append(report.Products, product)
		}
	}
	s.logger.Info("Products ready", zap.Int("count", len(report.Products)))

	if withOrder {
		if len(report.Customers) == 0 || len(report.Products) < 2 {
			return nil, errNotEnoughData
		}
		customer := report.Customers[0]
		result, err := s.orders.Create(ctx, service.OrderInput{
			CustomerID: customer.ID.String(),
			ProductIDs: []string{report.Products[0].ID.String(), report.Products[1].ID.String()},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create demo order: %w", err)
		}
		if result.Order == nil {
			return nil, fmt.Errorf("demo order rejected: %s", strings.Join(result.Errors, "; "))
		}
		report.Order = result.Order
		s.logger.Info("Demo order created",
			zap.String("order_id", result.Order.ID.String()),
			zap.String("customer", customer.Name),
			zap.String("total_amount", result.Order.TotalAmount.StringFixed(2)),
		)
	}

	s.logger.Info("Seeding complete")
	return report, nil
}

// findCustomer matches the email exactly, as the unique constraint does.
func (s *seeder) findCustomer(ctx context.Context, email string) (*domain.Customer, error) {
	one := 1
	page, err := s.customers.List(ctx, query.Filters{"email_exact": email}, nil, query.PageRequest{First: &one})
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer %s: %w", email, err)
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return page.Items[0], nil
}

func (s *seeder) ensureProduct(ctx context.Context, sp sampleProduct) (*domain.Product, error) {
	one := 1
	page, err := s.products.List(ctx, query.Filters{"name_exact": sp.name}, []string{"created_at"}, query.PageRequest{First: &one})
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %s: %w", sp.name, err)
	}
	if len(page.Items) > 0 {
		return page.Items[0], nil
	}

	stock := sp.stock
	result, err := s.products.Create(ctx, service.ProductInput{Name: sp.name, Price: sp.price, Stock: &stock})
	if err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", sp.name, err)
	}
	if result.Product == nil {
		s.logger.Warn("Product rejected",
			zap.String("name", sp.name),
			zap.String("reasons", strings.Join(result.Errors, "; ")),
			zap.String("price", sp.price),
			zap.Int("stock", sp.stock),
		)
		return nil, nil
	}
	return result.Product, nil
}
