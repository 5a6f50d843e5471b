package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mstgnz/eventpay/handler"
	"github.com/mstgnz/eventpay/infra/middle"
	"github.com/mstgnz/eventpay/infra/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the handlers and settings the router needs
type Options struct {
	Payment        *handler.PaymentHandler
	Health         *handler.HealthHandler
	RateLimiter    *middle.RateLimiter
	IPWhitelist    string
	AllowedOrigins []string
	// MetricsHandler defaults to promhttp.Handler()
	MetricsHandler http.Handler
}

// New builds the chi router with the middleware stack and all routes
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RealIP)
	r.Use(middle.RequestIDMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(middle.MetricsMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	r.Use(middle.SecurityHeadersMiddleware())
	if opts.RateLimiter != nil {
		r.Use(middle.RateLimitMiddleware(opts.RateLimiter))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Origin", "X-Requested-With", middle.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Length", middle.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300, // Preflight cache time (second)
	}))

	if opts.Health != nil {
		r.Get("/health", opts.Health.Check)
	}

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middle.IPWhitelistMiddleware(opts.IPWhitelist))
		r.Use(middle.RequestValidationMiddleware())
		Routes(r, opts.Payment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	})

	return r
}

// Routes registers the payment API routes under the current router
func Routes(r chi.Router, payment *handler.PaymentHandler) {
	r.Post("/razorpay/verify-payment", payment.VerifyRazorpayPayment)
	r.Get("/verify", payment.VerifyOrder)
	r.Get("/registrations/{id}", payment.GetRegistration)
}
