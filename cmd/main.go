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

	"notes_service/internal/auth"
	"notes_service/internal/config"
	"notes_service/internal/http_server/handlers/health"
	"notes_service/internal/http_server/handlers/login"
	"notes_service/internal/http_server/handlers/logout"
	"notes_service/internal/http_server/handlers/notes/add"
	"notes_service/internal/http_server/handlers/notes/get"
	"notes_service/internal/http_server/handlers/notes/list"
	"notes_service/internal/http_server/handlers/notes/remove"
	"notes_service/internal/http_server/handlers/notes/update"
	"notes_service/internal/http_server/handlers/refresh"
	"notes_service/internal/http_server/handlers/register"
	"notes_service/internal/http_server/middleware/authn"
	"notes_service/internal/metrics"
	notesservice "notes_service/internal/notes"
	"notes_service/internal/rabbitmq"
	"notes_service/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting notes service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	if err := runMigrations(cfg); err != nil {
		log.Error("failed to run migrations", slog.String("err", err.Error()))
		os.Exit(1)
	}

	metrics.Init()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	authService := auth.New(log, storage, storage, storage, cfg.Tokens.JWTSecret, cfg.Tokens.AccessTokenTTL, cfg.Tokens.RefreshTokenTTL)
	noteService := notesservice.New(log, storage)

	router := setupRouter(log, cfg, authService, noteService, msgBroker)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	authService *auth.Auth,
	noteService *notesservice.Notes,
	msgBroker *rabbitmq.Client,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/create-user", register.New(log, validate, authService, msgBroker))
		r.Post("/login", login.New(log, validate, authService, cfg.Env))
		r.Post("/refresh", refresh.New(log, authService))
		r.Post("/logout", logout.New(log, authService))
	})

	r.Route("/api/note", func(r chi.Router) {
		r.Use(authn.New(log, cfg.Tokens.JWTSecret))
		r.Post("/add-notes", add.New(log, validate, noteService, msgBroker))
		r.Get("/getAll-note", list.New(log, noteService))
		r.Get("/getNote/{id}", get.New(log, noteService))
		r.Put("/update-note", update.New(log, validate, noteService))
		r.Delete("/delete-note/{id}", remove.New(log, noteService))
	})

	r.Get("/health", health.New())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

func runMigrations(cfg *config.Config) error {
	dbURL := fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)

	m, err := migrate.New("file://"+cfg.Postgres.MigrationsPath, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
