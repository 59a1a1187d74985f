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

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	// WithTx returns a repository bound to the given transaction
	WithTx(tx database.DBTX) CustomerRepository
	Create(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Customer], error)
}

const customerColumns = "c.id, c.seq, c.name, c.email, c.phone, c.created_at, c.updated_at"

var customerSource = query.Source[*domain.Customer]{
	From:    "customers c",
	Columns: customerColumns,
	Filters: query.FilterSet{
		{Key: "name", Alias: "nameIcontains", Column: "c.name", Op: query.OpContains, Kind: query.KindText},
		{Key: "email", Alias: "emailIcontains", Column: "c.email", Op: query.OpContains, Kind: query.KindText},
		{Key: "email_exact", Alias: "emailExact", Column: "c.email", Op: query.OpEq, Kind: query.KindText},
		{Key: "created_at__gte", Alias: "createdAtGte", Column: "c.created_at", Op: query.OpGte, Kind: query.KindTime},
		{Key: "created_at__lte", Alias: "createdAtLte", Column: "c.created_at", Op: query.OpLte, Kind: query.KindTime},
		{Key: "phone_pattern", Alias: "phonePattern", Column: "c.phone", Op: query.OpPrefix, Kind: query.KindText},
	},
	Ordering: query.Ordering[*domain.Customer]{
		Fields: []query.SortField[*domain.Customer]{
			{Key: "name", Column: "c.name", Kind: query.KindText, Value: func(c *domain.Customer) any { return c.Name }},
			{Key: "email", Column: "c.email", Kind: query.KindText, Value: func(c *domain.Customer) any { return c.Email }},
			{Key: "created_at", Column: "c.created_at", Kind: query.KindTime, Value: func(c *domain.Customer) any { return c.CreatedAt }},
			{Key: "updated_at", Column: "c.updated_at", Kind: query.KindTime, Value: func(c *domain.Customer) any { return c.UpdatedAt }},
		},
		Tiebreak: query.SortField[*domain.Customer]{
			Key: "seq", Column: "c.seq", Kind: query.KindInt, Value: func(c *domain.Customer) any { return c.Seq },
		},
	},
	Scan: scanCustomer,
}

func scanCustomer(row query.Scanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Seq,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

type customerRepository struct {
	db database.DBTX
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db database.DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) WithTx(tx database.DBTX) CustomerRepository {
	return &customerRepository{db: tx}
}

// Create inserts a customer and fills in the generated id, seq and timestamps.
// A duplicate email yields ErrCustomerEmailExists.
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}

	query := `
		INSERT INTO customers (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
	).Scan(&customer.Seq, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID using parameterized queries
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// ExistsByEmail reports whether a customer with exactly this email is visible
// to the current connection or transaction.
func (r *customerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer email: %w", err)
	}
	return exists, nil
}

// List returns one page of customers matching filters in the requested order
func (r *customerRepository) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Customer], error) {
	result, err := customerSource.List(ctx, r.db, filters, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return result, nil
}
