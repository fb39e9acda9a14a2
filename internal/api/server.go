// Package api exposes the finance tracker over HTTP with gin. Every route
// except /health requires a bearer token whose userId scopes all reads and
// writes.
package api

import (
	"net/http"
	"time"

	"finance-tracker-backend/internal/cache"
	"finance-tracker-backend/internal/export"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Options configures a Server.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	// Cache may be nil.
	Cache  *cache.Cache
	Logger zerolog.Logger
}

type Server struct {
	ledger   *ledger.Service
	cache    *cache.Cache
	importer *export.Importer
	auth     *Authenticator
	origins  []string
	log      zerolog.Logger
}

func NewServer(l *ledger.Service, opts Options) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		ledger:   l,
		cache:    opts.Cache,
		importer: export.NewImporter(l, opts.Logger),
		auth:     NewAuthenticator(opts.JWTSecret),
		origins:  origins,
		log:      opts.Logger,
	}
}

// Authenticator returns the token verifier used by the router.
func (s *Server) Authenticator() *Authenticator { return s.auth }

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthCheck)

	api := r.Group("/api", s.auth.Middleware())

	accounts := api.Group("/accounts")
	accounts.GET("", s.listAccounts)
	accounts.GET("/:id", s.getAccount)
	accounts.POST("", s.createAccount)
	accounts.PUT("/:id", s.updateAccount)
	accounts.DELETE("/:id", s.deleteAccount)

	txns := api.Group("/transactions")
	txns.GET("", s.listTransactions)
	txns.GET("/summary", s.getSummary)
	txns.GET("/categories", s.listCategories)
	txns.GET("/export", s.exportTransactions)
	txns.POST("/import", s.importTransactions)
	txns.GET("/:id", s.getTransaction)
	txns.POST("", s.createTransaction)
	txns.PUT("/:id", s.updateTransaction)
	txns.PATCH("/:id/rating", s.setRating)
	txns.DELETE("/:id", s.deleteTransaction)

	scheduled := api.Group("/scheduled-transactions")
	scheduled.GET("", s.listScheduled)
	scheduled.GET("/:id", s.getScheduled)
	scheduled.POST("", s.createScheduled)
	scheduled.PUT("/:id", s.updateScheduled)
	scheduled.POST("/:id/process", s.processScheduled)
	scheduled.DELETE("/:id", s.deleteScheduled)

	budgets := api.Group("/budgets")
	budgets.GET("", s.listBudgets)
	budgets.GET("/status", s.budgetStatus)
	budgets.GET("/export", s.exportBudgets)
	budgets.GET("/:id", s.getBudget)
	budgets.POST("", s.createBudget)
	budgets.PUT("/:id", s.updateBudget)
	budgets.DELETE("/:id", s.deleteBudget)

	return r
}

// requestLogger attaches the logger to the request context and logs one
// line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), s.log))
		c.Next()

		status := c.Writer.Status()
		evt := s.log.Info()
		if status >= http.StatusInternalServerError {
			evt = s.log.Error()
		} else if status >= http.StatusBadRequest {
			evt = s.log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("user_id", userID(c)).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.ledger.Store().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finance-tracker",
		"cache":   s.cache.Enabled(),
	})
}

// invalidate drops the user's cached lists after a write.
func (s *Server) invalidate(c *gin.Context) {
	s.cache.InvalidateUser(c.Request.Context(), userID(c))
}
