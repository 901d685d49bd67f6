package handler

import (
	"log/slog"
	"net/http"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/service"
	"yamdb/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RouterDeps is everything the HTTP API needs. Metrics and RateLimiter are
// optional.
type RouterDeps struct {
	Auth        service.AuthService
	Users       service.UserService
	Categories  service.CategoryService
	Genres      service.GenreService
	Titles      service.TitleService
	Reviews     service.ReviewService
	Comments    service.CommentService
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	RateLimiter *middleware.IPRateLimiter
}

// NewRouter builds the gin engine serving /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	dto.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	ops := r.Group("", middleware.Require(permission.ReadOnly))
	{
		health := func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		}
		ops.GET("/healthz", health)
		ops.HEAD("/healthz", health)
		if deps.Metrics != nil {
			ops.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
		}
	}

	api := r.Group("/api/v1")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}
	api.Use(middleware.Authenticate(deps.Auth))

	NewAuthHandler(deps.Auth).RegisterRoutes(api)
	NewUserHandler(deps.Users).RegisterRoutes(api)
	NewCategoryHandler(deps.Categories).RegisterRoutes(api)
	NewGenreHandler(deps.Genres).RegisterRoutes(api)
	NewTitleHandler(deps.Titles).RegisterRoutes(api)
	NewReviewHandler(deps.Reviews).RegisterRoutes(api)
	NewCommentHandler(deps.Comments).RegisterRoutes(api)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	})

	return r
}
