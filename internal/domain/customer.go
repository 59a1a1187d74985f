package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// phonePattern accepts either +<7-15 digits> or NNN-NNN-NNNN.
var phonePattern = regexp.MustCompile(`^(\+[0-9]{7,15}|[0-9]{3}-[0-9]{3}-[0-9]{4})$`)

// Customer represents a CRM contact that places orders
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Seq       int64     `json:"-" db:"seq"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidPhone reports whether phone satisfies the accepted phone grammar.
// The empty string means "no phone" and is valid.
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}
