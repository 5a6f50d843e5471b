package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstgnz/eventpay/checkout"
	"github.com/mstgnz/eventpay/handler"
	"github.com/mstgnz/eventpay/infra/config"
	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/infra/mail"
	"github.com/mstgnz/eventpay/infra/metrics"
	"github.com/mstgnz/eventpay/infra/middle"
	"github.com/mstgnz/eventpay/infra/opensearch"
	"github.com/mstgnz/eventpay/infra/store"
	"github.com/mstgnz/eventpay/infra/validate"
	"github.com/mstgnz/eventpay/provider"
	"github.com/mstgnz/eventpay/provider/razorpay"
	"github.com/mstgnz/eventpay/router"

	// Import for side-effect registration
	_ "github.com/mstgnz/eventpay/provider/phonepe"
	_ "github.com/mstgnz/eventpay/provider/stripe"
)

const version = "1.0.0"

var openSearchLogger *opensearch.Logger

func init() {
	// Load Env; containers may provide real environment variables instead
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.GetAppConfig()

	// Initialize OpenSearch client and logger
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
		}
	}

	var sink logger.Sink
	if openSearchLogger != nil {
		sink = openSearchLogger
	}
	logger.InitGlobalLogger(sink, cfg.Environment, logger.ParseLevel(cfg.LoggingLevel))

	validate.CustomValidate()
	metrics.Register()
}

func main() {
	cfg := config.GetAppConfig()

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := store.Open(startCtx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("Failed to open storage", err, logger.LogContext{
			Fields: map[string]any{"driver": cfg.StorageDriver},
		})
	}
	defer st.Close()

	gateway, err := provider.New(cfg.Gateway, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize payment gateway", err, logger.LogContext{
			Provider: cfg.Gateway,
			Fields:   map[string]any{"registered": provider.DefaultRegistry.Names()},
		})
	}

	verifier, err := razorpay.NewVerifier(cfg.RazorpayKeySecret)
	if err != nil {
		logger.Warn("Razorpay verification disabled", logger.LogContext{
			Provider: "razorpay",
			Fields:   map[string]any{"reason": err.Error()},
		})
	}

	var audit checkout.AuditLogger
	if openSearchLogger != nil {
		audit = openSearchLogger
	}

	checkoutService := checkout.NewService(checkout.Options{
		Store:    st,
		Gateway:  gateway,
		Mailer:   mail.FromConfig(cfg),
		Verifier: verifier,
		Validate: validate.CustomValidate(),
		Audit:    audit,
		AppURL:   cfg.AppURL,
	})

	rateLimiter := middle.NewRateLimiter(cfg.RateLimitPerMinute)
	go rateLimiter.Run(ctx)

	r := router.New(router.Options{
		Payment:     handler.NewPaymentHandler(checkoutService),
		Health:      handler.NewHealthHandler(st, gateway.Name(), cfg.Environment, version),
		RateLimiter: rateLimiter,
		IPWhitelist: cfg.IPWhitelist,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run your HTTP server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Provider: gateway.Name(),
		Fields:   map[string]any{"port": cfg.Port, "storage": cfg.StorageDriver},
	})

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
