package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm-api/internal/database"
	"crm-api/internal/domain"
	"crm-api/internal/query"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	WithTx(tx database.DBTX) ProductRepository
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// FindByIDs returns the products that exist among ids, in creation order.
	// Inside a transaction the rows stay share-locked until it ends.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Product], error)
}

const productColumns = "p.id, p.seq, p.name, p.price, p.stock, p.created_at"

var productSource = query.Source[*domain.Product]{
	From:    "products p",
	Columns: productColumns,
	Filters: query.FilterSet{
		{Key: "name", Alias: "nameIcontains", Column: "p.name", Op: query.OpContains, Kind: query.KindText},
		{Key: "name_exact", Alias: "nameExact", Column: "p.name", Op: query.OpEq, Kind: query.KindText},
		{Key: "price__gte", Alias: "priceGte", Column: "p.price", Op: query.OpGte, Kind: query.KindDecimal},
		{Key: "price__lte", Alias: "priceLte", Column: "p.price", Op: query.OpLte, Kind: query.KindDecimal},
		{Key: "stock__gte", Alias: "stockGte", Column: "p.stock", Op: query.OpGte, Kind: query.KindInt},
		{Key: "stock__lte", Alias: "stockLte", Column: "p.stock", Op: query.OpLte, Kind: query.KindInt},
	},
	Ordering: query.Ordering[*domain.Product]{
		Fields: []query.SortField[*domain.Product]{
			{Key: "name", Column: "p.name", Kind: query.KindText, Value: func(p *domain.Product) any { return p.Name }},
			{Key: "price", Column: "p.price", Kind: query.KindDecimal, Value: func(p *domain.Product) any { return p.Price }},
			{Key: "stock", Column: "p.stock", Kind: query.KindInt, Value: func(p *domain.Product) any { return p.Stock }},
			{Key: "created_at", Column: "p.created_at", Kind: query.KindTime, Value: func(p *domain.Product) any { return p.CreatedAt }},
		},
		Tiebreak: query.SortField[*domain.Product]{
			Key: "seq", Column: "p.seq", Kind: query.KindInt, Value: func(p *domain.Product) any { return p.Seq },
		},
	},
	Scan: scanProduct,
}

func scanProduct(row query.Scanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Seq,
		&product.Name,
		&product.Price,
		&product.Stock,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

type productRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db database.DBTX) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx database.DBTX) ProductRepository {
	return &productRepository{db: tx}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	query := `
		INSERT INTO products (id, name, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
	).Scan(&product.Seq, &product.CreatedAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if len(ids) == 0 {
		return products, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT %s FROM products p WHERE p.id IN (%s) ORDER BY p.seq FOR SHARE`,
		productColumns, placeholders(1, len(ids)),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List returns one page of products matching filters in the requested order
func (r *productRepository) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Product], error) {
	result, err := productSource.List(ctx, r.db, filters, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return result, nil
}
