package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/config"
	"enrollment-assessment/internal/domain"
	"enrollment-assessment/internal/infra/memory"
	pgstore "enrollment-assessment/internal/infra/postgres"
	redisstore "enrollment-assessment/internal/infra/redis"
	"enrollment-assessment/internal/infra/sqlite"
	"enrollment-assessment/internal/infra/webhook"
	transport "enrollment-assessment/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	catalog, err := loadCatalog(ctx, cfg, pool)
	if err != nil {
		return err
	}

	kv, closeKV, err := openKVStore(cfg, redisClient, pool, redisTTL)
	if err != nil {
		return err
	}
	defer closeKV()

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	hook := webhook.NewClient(cfg.Webhook.URL, nil)
	if !hook.Enabled() {
		log.Printf("webhook url not configured, submissions will not be sent")
	}

	service := app.NewAssessmentService(store, app.SessionConfig{
		Catalog:       catalog,
		Submitter:     hook,
		Persistence:   app.NewPersistence(kv),
		BookingURL:    cfg.Booking.URL,
		FeedbackDelay: config.TTLDuration(cfg.Quiz.FeedbackDelay, app.DefaultFeedbackDelay),
	})
	wsHandler := transport.NewWSHandler(service, cfg.Booking.FormEmbedScript)
	apiHandler := transport.NewAPIHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/catalog", apiHandler.ServeCatalog)
	mux.HandleFunc("/api/score", apiHandler.ServeScore)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: it would cut long-lived websocket connections
	}

	go func() {
		log.Printf("starting assessment service on :%s (storage=%s)", finalPort, cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadCatalog picks the catalog source: a YAML file, a Postgres row, or the built-in questions.
func loadCatalog(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (domain.Catalog, error) {
	switch {
	case cfg.Quiz.CatalogPath != "":
		return config.LoadCatalog(cfg.Quiz.CatalogPath)
	case cfg.Quiz.CatalogID != "":
		if pool == nil {
			return domain.Catalog{}, fmt.Errorf("quiz.catalog_id requires postgres")
		}
		return pgstore.NewCatalogLoader(pool).LoadCatalog(ctx, cfg.Quiz.CatalogID)
	default:
		return domain.CanonicalCatalog(), nil
	}
}

func openKVStore(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool, ttl time.Duration) (app.KeyValueStore, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.NewKVStore(), noop, nil
	case config.DriverRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("storage driver redis requires redis.addr")
		}
		return redisstore.NewKVStore(redisClient, ttl), noop, nil
	case config.DriverPostgres:
		if pool == nil {
			return nil, noop, fmt.Errorf("storage driver postgres requires postgres.url")
		}
		return pgstore.NewKVStore(pool), noop, nil
	case config.DriverSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = "assessment.db"
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, noop, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("close sqlite: %v", err)
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
