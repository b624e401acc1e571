package controller

import (
	"time"

	"github.com/brocantio/checkout/internal/config"
	"github.com/brocantio/checkout/internal/infrastructure/observability"
	customMW "github.com/brocantio/checkout/internal/middleware"
	"github.com/brocantio/checkout/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	RedisClient        *redis.Client
	CheckoutService    *service.CheckoutService
	TransactionService *service.TransactionService
	Countries          service.CountrySource
	Metrics            *observability.Metrics
	CORSConfig         config.CORSConfig
	JWTSecret          string
	RequestsPerMinute  int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.SecurityHeaders())
	r.Use(customMW.RateLimit(deps.RequestsPerMinute))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.RedisClient)
	checkoutH := NewCheckoutController(deps.CheckoutService)
	transactionH := NewTransactionController(deps.TransactionService)
	countryH := NewCountryController(deps.Countries)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The country list backs the shipping form before login.
		r.Get("/countries", countryH.List)

		r.Group(func(r chi.Router) {
			r.Use(customMW.RequireAuth(deps.JWTSecret))

			// Checkout sessions
			r.Post("/checkout", checkoutH.Open)
			r.Get("/checkout/{id}", checkoutH.Get)
			r.Put("/checkout/{id}/fields", checkoutH.UpdateField)
			r.Post("/checkout/{id}/advance", checkoutH.Advance)
			r.Post("/checkout/{id}/retreat", checkoutH.Retreat)
			r.Post("/checkout/{id}/submit", checkoutH.Submit)
			r.Delete("/checkout/{id}", checkoutH.Cancel)

			// Transactions
			r.Get("/transactions/own", transactionH.Own)
		})
	})

	return r
}
