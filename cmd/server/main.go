package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libratrack/backend/internal/config"
	delivery "github.com/libratrack/backend/internal/delivery/http"
	"github.com/libratrack/backend/internal/middleware"
	"github.com/libratrack/backend/internal/reaper"
	"github.com/libratrack/backend/internal/repository/postgres"
	"github.com/libratrack/backend/internal/token"
	"github.com/libratrack/backend/internal/usecase"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info("LibraTrack backend starting")

	cfg := config.Load()

	// Connect to PostgreSQL with retry
	var pool *pgxpool.Pool
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err == nil {
			err = pool.Ping(ctx)
			if err != nil {
				pool.Close()
			}
		}
		cancel()
		if err == nil {
			logger.Info("connected to PostgreSQL")
			break
		}
		logger.Warn("database connection failed", "attempt", attempt, "error", err)
		if attempt == 5 {
			logger.Error("could not connect to database, giving up")
			os.Exit(1)
		}
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	defer pool.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	typeRepo := postgres.NewTitleTypeRepository(pool)
	genreRepo := postgres.NewGenreRepository(pool)
	titleRepo := postgres.NewTitleRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	proposalRepo := postgres.NewProposalRepository(pool)

	// Signing secret is loaded once here and injected; nothing else reads it.
	codec := token.NewCodec(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenRepo, codec, &cfg.JWT)
	titleUsecase := usecase.NewTitleUsecase(titleRepo, typeRepo, genreRepo)
	catalogUsecase := usecase.NewCatalogUsecase(catalogRepo, titleRepo)
	reviewUsecase := usecase.NewReviewUsecase(reviewRepo, titleRepo)
	proposalUsecase := usecase.NewProposalUsecase(proposalRepo, titleRepo)

	// HTTP
	handler := delivery.NewHandler(authUsecase, titleUsecase, catalogUsecase, reviewUsecase, proposalUsecase)
	authMiddleware := middleware.NewAuthMiddleware(codec, userRepo, cfg.Auth.PublicPaths)
	router := delivery.NewRouter(handler, authMiddleware, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background reaper for expired refresh tokens
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	tokenReaper := reaper.New(tokenRepo, cfg.Reaper.Interval, logger.With("component", "reaper"))
	go tokenReaper.Run(reaperCtx)

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stopReaper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
