package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-tracker-backend/internal/api"
	"finance-tracker-backend/internal/cache"
	"finance-tracker-backend/internal/config"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/logger"
	"finance-tracker-backend/internal/scheduler"
	"finance-tracker-backend/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Create the database schema and exit")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo accounts, transactions and budgets (idempotent) and exit")
	demoUser := flag.String("demo-user", "demo-user", "User id that -seed-demo seeds")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to initialize store")
	}
	defer st.Close()

	if *migrateCmd {
		log.Info().Msg("Migration completed successfully")
		return
	}

	svc := ledger.New(st, log)

	if *seedDemoCmd {
		if err := seedDemo(ctx, svc, cfg.JWTSecret, *demoUser, log); err != nil {
			log.Fatal().Err(err).Msg("Seeding demo data failed")
		}
		return
	}

	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis, continuing without cache")
		}
		redisCache = cache.New(client, log)
		defer redisCache.Close()
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler.Spec, cfg.Scheduler.TimeZone, svc, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	srv := api.NewServer(svc, api.Options{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Cache:       redisCache,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// openStore returns the configured backend. The Postgres schema is created
// if missing, so -migrate is only needed to prepare a database ahead of time.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL, store.DefaultRetryPolicy, log)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return pg, nil
}

func seedDemo(ctx context.Context, svc *ledger.Service, secret, userID string, log zerolog.Logger) error {
	seeded, err := svc.SeedDemo(ctx, userID)
	if err != nil {
		return err
	}
	if !seeded {
		log.Info().Str("user_id", userID).Msg("Demo user already has accounts, nothing seeded")
	}

	token, err := api.NewAuthenticator(secret).Issue(userID, 30*24*time.Hour)
	if err != nil {
		return fmt.Errorf("issuing demo token: %w", err)
	}
	fmt.Println(token)
	return nil
}
