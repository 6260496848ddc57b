package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"millionGridAPI/db"
	"millionGridAPI/handlers"
	"millionGridAPI/internal/workers"
	"millionGridAPI/middleware"
	"millionGridAPI/services"
)

var (
	dbPool         *pgxpool.Pool
	pixelService   *services.PixelService
	paymentService *services.MercadoPagoService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	accessToken := os.Getenv("MERCADO_PAGO_ACCESS_TOKEN")
	if accessToken == "" {
		log.Fatal("MERCADO_PAGO_ACCESS_TOKEN environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := db.Migrate(ctx, dbPool); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}
	log.Println("Database ready")

	pixelService = services.NewPixelService(dbPool)
	paymentService = services.NewMercadoPagoService(accessToken, os.Getenv("BACKEND_URL"))

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	pixelHandler := handlers.NewPixelHandler(pixelService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(pixelService, paymentService)
	webhookHandler := handlers.NewWebhookHandler(pixelService, paymentService)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	workers.StartReaper(workerCtx, dbPool, reaperInterval(), pixelTTL())

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := dbPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "million-grid-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/pixels", pixelHandler.GetPixels).Methods("GET")
	api.HandleFunc("/pixels", pixelHandler.CreatePixel).Methods("POST")
	api.HandleFunc("/pixels/{id}/status", pixelHandler.GetPixelStatus).Methods("GET")
	api.HandleFunc("/pixels/{id}", pixelHandler.DeletePixel).Methods("DELETE")

	api.HandleFunc("/payments/pix", paymentHandler.CreatePixPayment).Methods("POST")
	api.HandleFunc("/payments/webhook", webhookHandler.HandlePaymentWebhook).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)
	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func reaperInterval() time.Duration {
	return envDuration("REAPER_INTERVAL", time.Minute)
}

func pixelTTL() time.Duration {
	return envDuration("PIXEL_TTL", 10*time.Minute)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
