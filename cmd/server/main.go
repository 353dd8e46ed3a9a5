package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XSparkDev/akalaw/internal/config"
	"github.com/XSparkDev/akalaw/internal/discovery"
	"github.com/XSparkDev/akalaw/internal/gateway"
	"github.com/XSparkDev/akalaw/internal/handlers"
	"github.com/XSparkDev/akalaw/internal/messaging"
	"github.com/XSparkDev/akalaw/internal/notification"
	"github.com/XSparkDev/akalaw/internal/repository"
	"github.com/XSparkDev/akalaw/internal/service"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "akalaw-payments"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("starting payment service",
		"paystackKey", config.RedactedSecret(cfg.PaystackSecretKey),
		"resendKey", config.RedactedSecret(cfg.ResendAPIKey),
		"baseURL", cfg.PublicBaseURL)

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer mongoClient.Disconnect(context.Background())

	if err := mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Monitoring topic is optional
	producer := messaging.NewNoopProducer()
	if len(cfg.KafkaBrokers) > 0 {
		producer = messaging.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Println("Kafka producer initialized")
	}
	defer producer.Close()

	paymentRepo := repository.NewPaymentRepository(db, producer, logger)
	if err := paymentRepo.EnsureIndexes(context.Background()); err != nil {
		log.Printf("Warning: failed to create indexes: %v", err)
	}

	gatewayClient := gateway.NewPaystackClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)

	var sender notification.Sender
	if cfg.ResendAPIKey != "" {
		sender = notification.NewResendSender(cfg.ResendAPIKey)
	} else {
		log.Println("Warning: RESEND_API_KEY not set, email delivery disabled")
	}
	notifier := notification.NewService(sender, notification.Config{
		From:          cfg.EmailFrom,
		FromName:      cfg.EmailFromName,
		AdminEmail:    cfg.AdminEmail,
		ReplyTo:       cfg.EmailReplyTo,
		PublicBaseURL: cfg.PublicBaseURL,
	}, logger)

	paymentService := service.NewPaymentService(paymentRepo, gatewayClient, notifier, producer, service.Config{
		PublicBaseURL: cfg.PublicBaseURL,
		DocumentsDir:  cfg.DocumentsDir,
	}, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)

	router := mux.NewRouter()
	paymentHandler.RegisterRoutes(router)

	// Service registration is optional outside the cluster
	if cfg.ConsulAddr != "" {
		consulClient, err := discovery.NewConsulClient(cfg.ConsulAddr)
		if err != nil {
			return fmt.Errorf("failed to create consul client: %w", err)
		}

		serviceID := fmt.Sprintf("%s-%s", serviceName, cfg.ServiceID)
		if err := consulClient.RegisterService(serviceID, serviceName, cfg.ServerPort); err != nil {
			return fmt.Errorf("failed to register service with consul: %w", err)
		}
		log.Printf("Registered with Consul as %s", serviceID)

		defer func() {
			if err := consulClient.DeregisterService(serviceID); err != nil {
				log.Printf("Failed to deregister service: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting %s on port %s", serviceName, cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited gracefully")
	return nil
}
