package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"crm-api/internal/config"
	"crm-api/internal/database"
	"crm-api/internal/logger"
	"crm-api/internal/repository"
	"crm-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop and recreate every table before seeding")
	withOrder := flag.Bool("with-order", false, "also create a demo order for the first customer")
	status := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()
	db := dbService.DB()

	if *status {
		if err := database.GetMigrationStatus(db, cfg.Database.MigrationsDir, log); err != nil {
			log.Fatal("Failed to read migration status", zap.Error(err))
		}
		return
	}

	if *reset {
		err = database.ResetDatabase(db, cfg.Database.MigrationsDir, log)
	} else {
		err = database.RunMigrations(db, cfg.Database.MigrationsDir, log)
	}
	if err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}

	transactor := database.NewTransactor(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	s := &seeder{
		customers: service.NewCustomerService(customerRepo, transactor, log),
		products:  service.NewProductService(productRepo, log),
		orders:    service.NewOrderService(customerRepo, productRepo, orderRepo, transactor, log),
		logger:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.run(ctx, *withOrder); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}
