package transport

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"crm-api/internal/middleware"
	"crm-api/internal/query"

	"go.uber.org/zap"
)

// Query parameters that control ordering and paging. Every other parameter
// is passed to the filter engine.
var reservedParams = map[string]bool{
	"order_by": true,
	"orderBy":  true,
	"first":    true,
	"last":     true,
	"after":    true,
	"before":   true,
}

type pageParams struct {
	First *int `json:"first" validate:"omitempty,min=0"`
	Last  *int `json:"last" validate:"omitempty,min=0"`
}

type listRequest struct {
	filters query.Filters
	orderBy []string
	page    query.PageRequest
}

type listFunc[T any] func(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[T], error)

// parseIntParam returns nil when the parameter is absent.
func parseIntParam(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseListRequest(r *http.Request, limits query.Limits) (listRequest, error) {
	values := r.URL.Query()

	var params pageParams
	var err error
	if params.First, err = parseIntParam(r, "first"); err != nil {
		return listRequest{}, errInvalidPageSize
	}
	if params.Last, err = parseIntParam(r, "last"); err != nil {
		return listRequest{}, errInvalidPageSize
	}
	if err := middleware.ValidateRequest(&params); err != nil {
		return listRequest{}, err
	}

	filters := make(query.Filters)
	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		filters[key] = vals[0]
	}

	orderBy := slices.Concat(values["order_by"], values["orderBy"])

	page := query.PageRequest{
		First:  params.First,
		After:  values.Get("after"),
		Last:   params.Last,
		Before: values.Get("before"),
	}

	return listRequest{
		filters: filters,
		orderBy: orderBy,
		page:    page.Normalize(limits),
	}, nil
}

var errInvalidPageSize = errors.New("first and last must be integers")

// listHandler serves GET list endpoints: query parameters in, one JSON page out.
func listHandler[T any](logger *zap.Logger, limits query.Limits, list listFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseListRequest(r, limits)
		if err != nil {
			if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
				middleware.RespondWithValidationErrors(w, validationErrors)
				return
			}
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		page, err := list(r.Context(), req.filters, req.orderBy, req.page)
		if err != nil {
			if errors.Is(err, query.ErrInvalidCursor) {
				middleware.RespondWithError(w, http.StatusBadRequest, "invalid cursor")
				return
			}
			logger.Error("List failed", zap.String("path", r.URL.Path), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list results")
			return
		}

		middleware.RespondWithJSON(w, http.StatusOK, page)
	}
}

// respondDecodeError answers a body that failed to decode or validate.
func respondDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// createdOrRejected is 201 when an entity was written and 422 otherwise.
func createdOrRejected(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusUnprocessableEntity
}
