package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brocantio/checkout/internal/backend"
	"github.com/brocantio/checkout/internal/bootstrap"
	"github.com/brocantio/checkout/internal/controller"
	"github.com/brocantio/checkout/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "checkout-api", "checkout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Backend clients ---
	backendClient := backend.NewClient(app.Config.Backend.BaseURL, app.Config.Backend.Timeout, app.Logger)
	productClient := backend.NewProductClient(backendClient)
	transactionClient := backend.NewTransactionClient(backendClient)
	countryClient := backend.NewCountryClient(
		app.Config.Countries.URL,
		app.Config.Countries.Timeout,
		app.Redis,
		app.Config.Countries.CacheTTL,
		app.Metrics,
		app.Logger,
	)

	// --- Services ---
	notifier := service.NewLogNotifier(app.Logger)
	checkoutService := service.NewCheckoutService(productClient, transactionClient, notifier, app.Metrics, app.Logger)
	transactionService := service.NewTransactionService(transactionClient, app.Logger)

	// --- Session expiry janitor ---
	go func() {
		ticker := time.NewTicker(app.Config.Checkout.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := checkoutService.ExpireSessions(app.Config.Checkout.SessionTTL); n > 0 {
					app.Logger.Info().Int("count", n).Msg("Expired abandoned checkout sessions")
				}
			}
		}
	}()

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		RedisClient:        app.Redis,
		CheckoutService:    checkoutService,
		TransactionService: transactionService,
		Countries:          countryClient,
		Metrics:            app.Metrics,
		CORSConfig:         app.Config.Server.CORS,
		JWTSecret:          app.Config.Auth.JWTSecret,
		RequestsPerMinute:  app.Config.Server.RequestsPerMinute,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
