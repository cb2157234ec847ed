package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/catalog/internal/auth"
	"github.com/mmynk/catalog/internal/config"
	"github.com/mmynk/catalog/internal/currency"
	"github.com/mmynk/catalog/internal/insights"
	"github.com/mmynk/catalog/internal/middleware"
	"github.com/mmynk/catalog/internal/notify"
	"github.com/mmynk/catalog/internal/service"
	"github.com/mmynk/catalog/internal/splitting"
	"github.com/mmynk/catalog/internal/storage/sqlite"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
	"github.com/mmynk/catalog/pkg/logging"
)

// Tokens are issued elsewhere; the duration only matters for Generate.
const tokenDuration = 24 * time.Hour

func main() {
	// Load .env for local development; missing is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	converter := currency.NewConverter(
		currency.NewRateClient(cfg.ExchangeRateBaseURL, cfg.ExchangeRateAPIKey, httpClient, cfg.RateCacheTTL),
		currency.NewLocator(cfg.GeoIPBaseURL, cfg.CountryBaseURL, httpClient),
	)
	aggregator := insights.NewAggregator(store, converter)
	allocator := splitting.NewAllocator()

	var publisher notify.Publisher = notify.NewDirectPublisher(notify.NewHandler(store))
	if cfg.AMQPURL != "" {
		amqpClient, err := notify.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("Failed to connect to AMQP, storing notifications in-process", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			slog.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		slog.Info("AMQP disabled - notifications are stored in-process")
	}

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(auth.NewJWTManager(cfg.JWTSecret, tokenDuration)),
		middleware.ClientIPInterceptor(),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAccountServiceHandler(service.NewAccountService(store), interceptors))
	mux.Handle(apiconnect.NewReceiptServiceHandler(service.NewReceiptService(store, allocator, aggregator, publisher), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(service.NewGroupService(store, allocator, publisher), interceptors))
	mux.Handle(apiconnect.NewFolderServiceHandler(service.NewFolderService(store, aggregator), interceptors))
	mux.Handle(apiconnect.NewSubscriptionServiceHandler(service.NewSubscriptionService(store), interceptors))
	mux.Handle(apiconnect.NewInsightsServiceHandler(service.NewInsightsService(store, aggregator), interceptors))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS for gRPC-compatible clients.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Connect server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}

// loggingMiddleware logs every HTTP request, including non-RPC paths.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
