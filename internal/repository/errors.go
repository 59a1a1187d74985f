package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerEmailExists = errors.New("customer email already exists")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrValueOutOfRange     = errors.New("value out of range")
)

const customersEmailKey = "customers_email_key"

// mapError translates PostgreSQL integrity violations into repository
// sentinels. Anything else is returned unchanged.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == customersEmailKey {
			return ErrCustomerEmailExists
		}
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName)
	case pgerrcode.CheckViolation, pgerrcode.ForeignKeyViolation, pgerrcode.NotNullViolation:
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName)
	case pgerrcode.StringDataRightTruncationDataException, pgerrcode.NumericValueOutOfRange:
		return fmt.Errorf("%w: %s", ErrValueOutOfRange, pgErr.Message)
	}
	return err
}

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	out := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = fmt.Appendf(out, "$%d", start+i)
	}
	return string(out)
}
