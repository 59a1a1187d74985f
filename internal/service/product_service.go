package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"crm-api/internal/domain"
	"crm-api/internal/query"
	"crm-api/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	msgInvalidPrice  = "Price must be a valid decimal."
	msgPricePositive = "Price must be positive."
	msgNegativeStock = "Stock cannot be negative."
	msgStockTooLarge = "Stock is too large."
)

// maxPrice is the first value that no longer fits NUMERIC(10,2).
var maxPrice = decimal.New(1, 8)

// ProductInput is one product to create. Price is the client's decimal text;
// a nil Stock means 0.
type ProductInput struct {
	Name  string
	Price string
	Stock *int
}

// ProductResult is the outcome of CreateProduct
type ProductResult struct {
	Product *domain.Product `json:"product"`
	Errors  []string        `json:"errors"`
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*ProductResult, error)
	List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Product], error)
}

type productService struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(products repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{products: products, logger: logger}
}

// Create validates and stores a product. Prices are rounded to cents before
// the positivity check, so 0.004 is rejected.
func (s *productService) Create(ctx context.Context, input ProductInput) (*ProductResult, error) {
	name := strings.TrimSpace(input.Name)
	errs := []string{}

	if msg := checkName(name); msg != "" {
		errs = append(errs, msg)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil {
		errs = append(errs, msgInvalidPrice)
	} else {
		price = price.Round(2)
		switch {
		case !price.IsPositive():
			errs = append(errs, msgPricePositive)
		case price.GreaterThanOrEqual(maxPrice):
			errs = append(errs, msgInvalidPrice)
		}
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	switch {
	case stock < 0:
		errs = append(errs, msgNegativeStock)
	case stock > math.MaxInt32:
		errs = append(errs, msgStockTooLarge)
	}

	if len(errs) > 0 {
		return &ProductResult{Errors: errs}, nil
	}

	product := &domain.Product{Name: name, Price: price, Stock: stock}
	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &ProductResult{Product: product, Errors: []string{}}, nil
}

func (s *productService) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Product], error) {
	return s.products.List(ctx, filters, orderBy, page)
}
