package transport

import (
	"net/http"

	"crm-api/internal/middleware"
	"crm-api/internal/query"
	"crm-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCustomerRequest represents the customer creation payload. Field
// checks are reported by the service as messages, not as a 400.
type CreateCustomerRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (r CreateCustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

// BulkCreateCustomersRequest represents the bulk creation payload
type BulkCreateCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers" validate:"required"`
}

// CustomerHandler handles HTTP requests for customer operations
type CustomerHandler struct {
	customerService service.CustomerService
	limits          query.Limits
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, limits query.Limits, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		limits:          limits,
		logger:          logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/bulk", h.BulkCreate)
	})
}

// List handles filtered, ordered, paginated customer reads
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	listHandler(h.logger, h.limits, h.customerService.List)(w, r)
}

// Create handles single customer creation
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Customer request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	result, err := h.customerService.Create(r.Context(), req.input())
	if err != nil {
		h.logger.Error("Customer creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	if result.Customer != nil {
		h.logger.Info("Customer created", zap.String("customer_id", result.Customer.ID.String()))
	}
	middleware.RespondWithJSON(w, createdOrRejected(result.Customer != nil), result)
}

// BulkCreate handles bulk customer creation with per-row outcomes
func (h *CustomerHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateCustomersRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Bulk customer request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	rows := make([]service.CustomerInput, len(req.Customers))
	for i, c := range req.Customers {
		rows[i] = c.input()
	}

	result, err := h.customerService.BulkCreate(r.Context(), rows)
	if err != nil {
		h.logger.Error("Bulk customer creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
