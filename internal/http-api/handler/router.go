package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterConfig struct {
	Logger            *slog.Logger
	CORSOrigins       []string
	PrometheusEnabled bool
	// AuthLimit guards the sign-up and token routes; nil disables it.
	AuthLimit gin.HandlerFunc
	DB        Pinger
}

type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CategoryService
	Genres     service.GenreService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
	// UserLoader resolves token subjects to accounts
	UserLoader middleware.UserLoader
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.NoMethod(methodNotAllowed)

	router.GET("/health", healthHandler(cfg.DB))
	if cfg.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(svc.Auth, svc.UserLoader))
	api.Use(middleware.SanitizeInput())

	var authLimit []gin.HandlerFunc
	if cfg.AuthLimit != nil {
		authLimit = append(authLimit, cfg.AuthLimit)
	}
	NewAuthHandler(svc.Auth).RegisterRoutes(api, authLimit...)
	NewUserHandler(svc.Users).RegisterRoutes(api)
	NewCategoryHandler(svc.Categories).RegisterRoutes(api)
	NewGenreHandler(svc.Genres).RegisterRoutes(api)

	titles := api.Group("/titles")
	NewTitleHandler(svc.Titles).RegisterRoutes(titles)
	NewReviewHandler(svc.Reviews).RegisterRoutes(titles)
	NewCommentHandler(svc.Comments).RegisterRoutes(titles)

	return router
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// StripTrailingSlash routes "/titles/" and "/titles" to the same handler.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimSuffix(p, "/")
			if r.URL.RawPath != "" {
				r.URL.RawPath = strings.TrimSuffix(r.URL.RawPath, "/")
			}
		}
		next.ServeHTTP(w, r)
	})
}
