package transport

import (
	"net/http"
	"time"

	"crm-api/internal/middleware"
	"crm-api/internal/query"
	"crm-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateOrderRequest represents the order creation payload
type CreateOrderRequest struct {
	CustomerID string     `json:"customer_id" validate:"required"`
	ProductIDs []string   `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	limits       query.Limits
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, limits query.Limits, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		limits:       limits,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List handles filtered, ordered, paginated order reads
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	listHandler(h.logger, h.limits, h.orderService.List)(w, r)
}

// Create handles order creation
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	result, err := h.orderService.Create(r.Context(), service.OrderInput{
		CustomerID: req.CustomerID,
		ProductIDs: req.ProductIDs,
		OrderDate:  req.OrderDate,
	})
	if err != nil {
		h.logger.Error("Order creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	middleware.RespondWithJSON(w, createdOrRejected(result.Order != nil), result)
}
