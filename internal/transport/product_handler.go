package transport

import (
	"bytes"
	"encoding/json"
	"net/http"

	"crm-api/internal/middleware"
	"crm-api/internal/query"
	"crm-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload. Price may be
// a JSON number or a decimal string; it is kept raw so no float rounding
// happens before the service parses it.
type CreateProductRequest struct {
	Name  string          `json:"name"`
	Price json.RawMessage `json:"price" validate:"required"`
	Stock *int            `json:"stock"`
}

// priceText returns the price as decimal text. A JSON string is unquoted,
// null becomes "" and anything else is passed through for the service to
// reject.
func (r CreateProductRequest) priceText() string {
	raw := bytes.TrimSpace(r.Price)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	limits         query.Limits
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, limits query.Limits, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		limits:         limits,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List handles filtered, ordered, paginated product reads
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	listHandler(h.logger, h.limits, h.productService.List)(w, r)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product request rejected", zap.Error(err))
		respondDecodeError(w, err)
		return
	}

	result, err := h.productService.Create(r.Context(), service.ProductInput{
		Name:  req.Name,
		Price: req.priceText(),
		Stock: req.Stock,
	})
	if err != nil {
		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	if result.Product != nil {
		h.logger.Info("Product created", zap.String("product_id", result.Product.ID.String()))
	}
	middleware.RespondWithJSON(w, createdOrRejected(result.Product != nil), result)
}
