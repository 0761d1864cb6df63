package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hesham156/wafarle/api"
	"github.com/hesham156/wafarle/pkg/auth"
	"github.com/hesham156/wafarle/pkg/cart"
	"github.com/hesham156/wafarle/pkg/checkout"
	"github.com/hesham156/wafarle/pkg/config"
	"github.com/hesham156/wafarle/pkg/discovery"
	"github.com/hesham156/wafarle/pkg/models"
	"github.com/hesham156/wafarle/pkg/notify"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const sessionTTL = 30 * 24 * time.Hour

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront API",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// Connect to MySQL
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
	); err != nil {
		logger.Fatal("Failed to migrate", zap.Error(err))
	}

	ctx := context.Background()

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	defer redisRepo.Close()
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoRepo.Close(closeCtx)
	}()

	// Cart change fan-out across instances
	broadcaster := cart.NewBroadcaster(redisRepo, logger)
	broadcastCtx, stopBroadcast := context.WithCancel(ctx)
	defer stopBroadcast()
	go broadcaster.Run(broadcastCtx)

	// Order notification actors
	notifier, err := notify.NewService(logger)
	if err != nil {
		logger.Fatal("Failed to start notification actors", zap.Error(err))
	}
	defer notifier.Shutdown()

	authSvc := auth.NewService(db, redisRepo, sessionTTL, logger)
	checkoutSvc := checkout.NewService(db, mongoRepo, notifier, broadcaster, cfg.Cart.TaxRate, logger)

	// Connect to etcd for service discovery
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
	}

	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if sd != nil {
		if err := sd.Register(ctx, instance); err != nil {
			logger.Error("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd",
				zap.String("name", cfg.Server.Name),
				zap.String("address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))
		}
	}

	// Create server
	server := api.NewServer(cfg, db, redisRepo, mongoRepo, authSvc, checkoutSvc, broadcaster, logger)
	server.SetupRoutes()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	logger.Info("Storefront API started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	server.Stop()

	if sd != nil {
		if err := sd.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	logger.Info("Storefront API stopped")
}
