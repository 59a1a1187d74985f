package server

import (
	"fmt"
	"net/http"
	"time"

	"crm-api/internal/config"
	"crm-api/internal/database"
	custommiddleware "crm-api/internal/middleware"
	"crm-api/internal/query"
	"crm-api/internal/repository"
	"crm-api/internal/service"
	"crm-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, db),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
	}
}

// NewRouter wires repositories, services and handlers onto one chi router
func NewRouter(cfg *config.Config, logger *zap.Logger, db database.Service) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	limits := query.Limits{
		DefaultSize: cfg.Pagination.DefaultSize,
		MaxSize:     cfg.Pagination.MaxSize,
	}

	conn := db.DB()
	transactor := database.NewTransactor(conn)

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)

	// Initialize services
	customerService := service.NewCustomerService(customerRepo, transactor, logger)
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(customerRepo, productRepo, orderRepo, transactor, logger)

	// Register routes
	transport.NewCustomerHandler(customerService, limits, logger).RegisterRoutes(router)
	transport.NewProductHandler(productService, limits, logger).RegisterRoutes(router)
	transport.NewOrderHandler(orderService, limits, logger).RegisterRoutes(router)

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
			return err
		}
	}

	s.logger.Sync()
	return nil
}
