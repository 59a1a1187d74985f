package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"crm-api/internal/database"
	"crm-api/internal/domain"
	"crm-api/internal/query"
	"crm-api/internal/repository"

	"go.uber.org/zap"
)

const (
	msgNameRequired   = "Name is required."
	msgNameTooLong    = "Name is too long."
	msgEmailRequired  = "Email is required."
	msgEmailTooLong   = "Email is too long."
	msgEmailExists    = "Email already exists."
	msgInvalidPhone   = "Invalid phone format. Use +1234567890 or 123-456-7890."
	msgCustomerOK     = "Customer created successfully."
	msgCustomerFailed = "Failed"
)

// Column widths of customers.name / products.name and customers.email.
const (
	maxNameLength  = 120
	maxEmailLength = 254
)

// errRowRejected rolls a bulk row back to its savepoint after its messages
// have been recorded.
var errRowRejected = errors.New("row rejected")

// CustomerInput is one customer to create. Phone is optional; an empty phone
// is stored as NULL.
type CustomerInput struct {
	Name  string
	Email string
	Phone *string
}

// CustomerResult is the outcome of a single create. Customer is nil when
// Errors is non-empty.
type CustomerResult struct {
	Customer *domain.Customer `json:"customer"`
	Message  string           `json:"message"`
	Errors   []string         `json:"errors"`
}

// BulkCustomerResult lists the created customers and the row-scoped errors,
// both in input order.
type BulkCustomerResult struct {
	Customers []*domain.Customer `json:"customers"`
	Errors    []string           `json:"errors"`
}

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	Create(ctx context.Context, input CustomerInput) (*CustomerResult, error)
	BulkCreate(ctx context.Context, rows []CustomerInput) (*BulkCustomerResult, error)
	List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Customer], error)
}

type customerService struct {
	customers  repository.CustomerRepository
	transactor database.Transactor
	logger     *zap.Logger
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(
	customers repository.CustomerRepository,
	transactor database.Transactor,
	logger *zap.Logger,
) CustomerService {
	return &customerService{
		customers:  customers,
		transactor: transactor,
		logger:     logger,
	}
}

func normalizeCustomer(in CustomerInput) (name, email, phone string) {
	name = strings.TrimSpace(in.Name)
	email = strings.TrimSpace(in.Email)
	if in.Phone != nil {
		phone = strings.TrimSpace(*in.Phone)
	}
	return name, email, phone
}

func newCustomer(name, email, phone string) *domain.Customer {
	c := &domain.Customer{Name: name, Email: email}
	if phone != "" {
		c.Phone = &phone
	}
	return c
}

// Create validates and stores one customer. Every failed check is reported.
func (s *customerService) Create(ctx context.Context, input CustomerInput) (*CustomerResult, error) {
	name, email, phone := normalizeCustomer(input)
	errs := []string{}

	if msg := checkName(name); msg != "" {
		errs = append(errs, msg)
	}
	if email == "" {
		errs = append(errs, msgEmailRequired)
	} else if utf8.RuneCountInString(email) > maxEmailLength {
		errs = append(errs, msgEmailTooLong)
	} else {
		exists, err := s.customers.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check customer email: %w", err)
		}
		if exists {
			errs = append(errs, msgEmailExists)
		}
	}
	if !domain.ValidPhone(phone) {
		errs = append(errs, msgInvalidPhone)
	}

	if len(errs) > 0 {
		return &CustomerResult{Message: msgCustomerFailed, Errors: errs}, nil
	}

	customer := newCustomer(name, email, phone)
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrCustomerEmailExists) {
			return &CustomerResult{Message: msgCustomerFailed, Errors: []string{msgEmailExists}}, nil
		}
		s.logger.Error("Failed to create customer", zap.Error(err))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return &CustomerResult{Customer: customer, Message: msgCustomerOK, Errors: []string{}}, nil
}

// BulkCreate stores each row under its own savepoint inside one transaction,
// so a bad row never undoes its neighbours. Only a savepoint or commit
// failure aborts the whole request.
func (s *customerService) BulkCreate(ctx context.Context, rows []CustomerInput) (*BulkCustomerResult, error) {
	result := &BulkCustomerResult{Customers: []*domain.Customer{}, Errors: []string{}}

	err := s.transactor.WithTx(ctx, func(tx database.Tx) error {
		repo := s.customers.WithTx(tx)

		for idx, row := range rows {
			var created *domain.Customer
			var rowErrs []string

			err := tx.Savepoint(ctx, func() (err error) {
				defer func() {
					if p := recover(); p != nil {
						err = fmt.Errorf("%v", p)
					}
				}()

				created, rowErrs, err = s.createRow(ctx, repo, idx, row)
				if err == nil && len(rowErrs) > 0 {
					err = errRowRejected
				}
				return err
			})

			var spErr *database.SavepointError
			switch {
			case errors.As(err, &spErr):
				return err
			case errors.Is(err, errRowRejected):
				result.Errors = append(result.Errors, rowErrs...)
			case err != nil:
				s.logger.Warn("Bulk customer row failed", zap.Int("row", idx), zap.Error(err))
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", idx, err))
			default:
				result.Customers = append(result.Customers, created)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Bulk customer creation aborted", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, fmt.Errorf("failed to bulk create customers: %w", err)
	}

	s.logger.Info("Bulk customer creation finished",
		zap.Int("created", len(result.Customers)),
		zap.Int("failed", len(rows)-len(result.Customers)),
	)
	return result, nil
}

// createRow returns either the created customer, the row's rejection
// messages, or an unexpected error.
func (s *customerService) createRow(ctx context.Context, repo repository.CustomerRepository, idx int, row CustomerInput) (*domain.Customer, []string, error) {
	name, email, phone := normalizeCustomer(row)
	var errs []string

	if msg := checkName(name); msg != "" {
		errs = append(errs, fmt.Sprintf("Row %d: %s", idx, msg))
	}
	if email == "" {
		errs = append(errs, fmt.Sprintf("Row %d: %s", idx, msgEmailRequired))
	} else if utf8.RuneCountInString(email) > maxEmailLength {
		errs = append(errs, fmt.Sprintf("Row %d: %s", idx, msgEmailTooLong))
	} else {
		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			errs = append(errs, emailExistsRow(idx, email))
		}
	}
	if !domain.ValidPhone(phone) {
		errs = append(errs, fmt.Sprintf("Row %d: Invalid phone format (%s).", idx, phone))
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}

	customer := newCustomer(name, email, phone)
	if err := repo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrCustomerEmailExists) {
			return nil, []string{emailExistsRow(idx, email)}, nil
		}
		return nil, nil, err
	}
	return customer, nil, nil
}

// checkName returns the rejection message for a trimmed name, or "".
func checkName(name string) string {
	switch {
	case name == "":
		return msgNameRequired
	case utf8.RuneCountInString(name) > maxNameLength:
		return msgNameTooLong
	}
	return ""
}

func emailExistsRow(idx int, email string) string {
	return fmt.Sprintf("Row %d: Email already exists (%s).", idx, email)
}

func (s *customerService) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Customer], error) {
	return s.customers.List(ctx, filters, orderBy, page)
}
