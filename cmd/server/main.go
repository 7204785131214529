package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pollen/management/internal/config"
	"pollen/management/internal/db"
	"pollen/management/internal/logging"
	"pollen/management/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	env, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(env.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Pollen management starting up",
		"environment", env.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		env.PGUser, env.PGPassword, env.PGHost, env.PGPort, env.PGDatabase)

	// Connect to DB with sqlx
	if err := db.InitPostgres(dsn); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM
	gormDB, err := db.InitPostgresORM(dsn)
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if err := db.Migrate(gormDB); err != nil {
		logging.Error("Schema migration failed", "error", err.Error())
		log.Fatalf("Schema migration failed: %v", err)
	}
	logging.Info("Schema migration completed")

	upSince := time.Now()

	// Initialize router with Chi
	// Note: metricsReg is created in RegisterRoutes and applied as global middleware
	router, err := routes.RegisterRoutes(env, upSince)
	if err != nil {
		logging.Error("Failed to initialize routes", "error", err.Error())
		log.Fatalf("Failed to initialize routes: %v", err)
	}

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	addr := fmt.Sprintf(":%d", env.Port)
	logging.Info("Server starting",
		"port", env.Port,
		"environment", env.AppEnv,
	)

	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
