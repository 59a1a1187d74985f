package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOrderRequest struct {
	CustomerID string   `json:"customer_id" validate:"required"`
	ProductIDs []string `json:"product_ids"`
	First      *int     `json:"first" validate:"omitempty,min=0"`
}

func decode(t *testing.T, body any) error {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	var out testOrderRequest
	return DecodeAndValidate(req, &out)
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a missing customer_id is rejected", prop.ForAll(
		func(includeCustomer bool, includeProducts bool) bool {
			body := map[string]any{}
			if includeCustomer {
				body["customer_id"] = "c1"
			}
			if includeProducts {
				body["product_ids"] = []string{"p1"}
			}

			err := decode(t, body)
			if includeCustomer {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PageSizeMinimum(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative page sizes are rejected", prop.ForAll(
		func(first int) bool {
			err := decode(t, map[string]any{"customer_id": "c1", "first": first})
			if first >= 0 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-50, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	err := decode(t, map[string]any{"first": -1})
	require.Error(t, err)

	assert.ElementsMatch(t, []ValidationError{
		{Field: "customer_id", Message: "This field is required"},
		{Field: "first", Message: "Value must be at least 0"},
	}, FormatValidationErrors(err))
}

func TestFormatValidationErrors_IgnoresSyntaxErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{")))

	var out testOrderRequest
	err := DecodeAndValidate(req, &out)
	require.Error(t, err)
	assert.Empty(t, FormatValidationErrors(err))
}
