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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"placementd/pkg/bus"
	"placementd/pkg/db"
	"placementd/pkg/render"
	"placementd/pkg/telemetry"
	"placementd/services/placement"
	"placementd/services/placement/api"
	"placementd/services/placement/internal/config"
)

func main() {
	if err := run("placementd"); err != nil {
		log.New(os.Stderr, "", log.LstdFlags).Fatal(err)
	}
}

func run(serviceName string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, middleware, logger, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownTelemetry != nil {
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "%s: telemetry shutdown error: %v\n", serviceName, err)
			}
		}
	}()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	orm, err := db.ConnectORM(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect orm: %w", err)
	}
	defer func() {
		if err := db.CloseORM(orm); err != nil {
			fmt.Fprintf(os.Stderr, "%s: close orm error: %v\n", serviceName, err)
		}
	}()

	var eventBus *bus.Bus
	if cfg.NATSURL != "" {
		eventBus, err = bus.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer eventBus.Close()
	} else {
		logger.Printf("WARN PLACEMENT_NATS_URL not set, events disabled")
	}

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}

	window, err := cfg.Window()
	if err != nil {
		return fmt.Errorf("build window: %w", err)
	}

	engine, err := placement.New(
		&placement.Store{DB: pool, ORM: orm, Bus: eventBus},
		renderer,
		placement.Config{Window: window, Logger: logger},
	)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	if cfg.SeedFile != "" {
		seed, err := placement.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		if err := engine.Seed(ctx, seed); err != nil {
			return fmt.Errorf("apply seed file: %w", err)
		}
		logger.Printf("INFO seeded from %s", cfg.SeedFile)
	}

	server, err := api.New(engine)
	if err != nil {
		return fmt.Errorf("init api: %w", err)
	}
	routes, err := server.Routes()
	if err != nil {
		return fmt.Errorf("build routes: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/readyz", readyHandler(pool))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", routes)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: middleware(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "%s: server shutdown error: %v\n", serviceName, err)
		}
	}()

	logger.Printf("INFO listening on %s", httpServer.Addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("ERROR server failed: %v", err)
		return err
	}

	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, pool); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
