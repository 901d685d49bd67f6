// Package app assembles the YaMDb service graph from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/confirm"
	"yamdb/internal/http-api/handler"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"
	"yamdb/internal/mailer"
	"yamdb/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *gorm.DB
	Metrics *metrics.Metrics

	Auth       service.AuthService
	Users      service.UserService
	Categories service.CategoryService
	Genres     service.GenreService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService

	sqlDB *sql.DB
	redis *redis.Client
}

// New connects to the database (and Redis when configured) and builds every
// service. Close releases the connections.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	gormDB, sqlDB, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, DB: gormDB, sqlDB: sqlDB}
	if cfg.PrometheusEnabled {
		a.Metrics = metrics.New()
	}

	attempts := service.NewNoopAttemptLimiter()
	if cfg.RedisURL != "" {
		client, err := newRedisClient(ctx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		attempts = service.NewRedisAttemptLimiter(client, cfg.ConfirmMaxAttempts, cfg.ConfirmAttemptWindow)
	}

	m, err := mailer.New(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	users := repository.NewUserRepository(gormDB)
	categories := repository.NewCategoryRepository(gormDB)
	genres := repository.NewGenreRepository(gormDB)
	titles := repository.NewTitleRepository(gormDB)
	reviews := repository.NewReviewRepository(gormDB)
	comments := repository.NewCommentRepository(gormDB)
	tx := repository.NewTxManager(gormDB)

	tokens := confirm.NewGenerator(cfg.ConfirmationSecret, cfg.ConfirmationTokenTTL)
	issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	confirmations := service.NewConfirmationSender(tokens, m, logger)

	a.Users = service.NewUserService(users, reviews, titles, tx, confirmations, logger)
	a.Auth = service.NewAuthService(a.Users, users, tokens, issuer, attempts, confirmations, a.Metrics, logger)
	a.Categories = service.NewCategoryService(categories)
	a.Genres = service.NewGenreService(genres)
	a.Titles = service.NewTitleService(titles, genres, categories, tx)
	a.Reviews = service.NewReviewService(reviews, titles, tx, permission.AuthorOrModeratorOrAdminOrReadOnly, a.Metrics)
	a.Comments = service.NewCommentService(comments, reviews, permission.AuthorOrModeratorOrAdminOrReadOnly)
	return a, nil
}

func newRedisClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// the limiter fails open, so an unreachable Redis only disables throttling
		logger.Warn("redis_unreachable", "addr", opts.Addr, "error", err)
	}
	return client, nil
}

// Router returns the HTTP API for this application.
func (a *App) Router() *gin.Engine {
	return handler.NewRouter(handler.RouterDeps{
		Auth:        a.Auth,
		Users:       a.Users,
		Categories:  a.Categories,
		Genres:      a.Genres,
		Titles:      a.Titles,
		Reviews:     a.Reviews,
		Comments:    a.Comments,
		Logger:      a.Logger,
		Metrics:     a.Metrics,
		RateLimiter: middleware.NewIPRateLimiter(a.Config.RateLimitRPS, a.Config.RateLimitBurst),
	})
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.sqlDB != nil {
		errs = append(errs, a.sqlDB.Close())
	}
	return errors.Join(errs...)
}
