// Package webui serves the browser-facing pages of the client: routing,
// guards, forms and toasts. All business data comes from the remote API; the
// handlers only fetch, cache and render it.
package webui

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hamkharj/internal/api"
	"hamkharj/internal/config"
	"hamkharj/internal/format"
	"hamkharj/internal/report"
	"hamkharj/internal/session"
	appweb "hamkharj/web"
)

// Options configures the web UI server.
type Options struct {
	Web      config.WebConfig
	Cache    config.CacheConfig
	Session  *session.Session
	Client   *api.Client
	Logger   *zap.Logger
	Registry *prometheus.Registry // optional; enables /metrics when set
}

// Server is the local web UI process serving one user's session.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	session    *session.Session
	client     *api.Client
	reports    *report.ExcelWriter
	logger     *zap.Logger
	templates  *template.Template

	expensesCache   *lruCache[expensePage]
	paymentsCache   *lruCache[paymentPage]
	settlementCache *lruCache[*api.SettlementReport]
	usersCache      *lruCache[[]api.User]
	pendingCache    *lruCache[[]api.Expense]

	stopCacheCleanup chan struct{}
}

type expensePage struct {
	Items []api.Expense
	Page  api.Pagination
}

type paymentPage struct {
	Items []api.Payment
	Page  api.Pagination
}

// NewServer creates the web UI server with its routes and templates ready.
func NewServer(opts Options) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheSize := opts.Cache.Size
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cacheTTL := opts.Cache.TTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	s := &Server{
		router:           gin.New(),
		session:          opts.Session,
		client:           opts.Client,
		reports:          report.NewExcelWriter(logger),
		logger:           logger,
		expensesCache:    newLRUCache[expensePage](cacheSize, cacheTTL),
		paymentsCache:    newLRUCache[paymentPage](cacheSize, cacheTTL),
		settlementCache:  newLRUCache[*api.SettlementReport](cacheSize, cacheTTL),
		usersCache:       newLRUCache[[]api.User](8, cacheTTL),
		pendingCache:     newLRUCache[[]api.Expense](8, cacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	templates, err := template.New("").Funcs(template.FuncMap{
		"toman":     format.Toman,
		"jdate":     jalaliDate,
		"monthName": monthName,
		"seq":       seq,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = templates

	s.httpServer = &http.Server{
		Addr:         opts.Web.Address(),
		Handler:      s.router,
		ReadTimeout:  opts.Web.ReadTimeout,
		WriteTimeout: opts.Web.WriteTimeout,
	}

	s.setupMiddleware()
	s.setupRoutes(opts.Registry)

	go s.startCacheCleanup(cacheTTL)

	return s, nil
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// setupRoutes configures all UI routes
func (s *Server) setupRoutes(registry *prometheus.Registry) {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	if static, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		s.router.StaticFS("/static", http.FS(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", zap.Error(err))
	}

	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	s.router.GET("/login", s.redirectResolved(), s.handleLoginPage)
	s.router.POST("/login", s.handleLogin)
	s.router.GET("/register", s.redirectResolved(), s.handleRegisterPage)
	s.router.POST("/register", s.handleRegister)
	s.router.GET("/waiting-approval", s.handleWaitingApproval)
	s.router.POST("/logout", s.handleLogout)

	authed := s.router.Group("/", s.requireApproved())
	{
		authed.GET("/dashboard", s.handleDashboard)
		authed.POST("/expenses", s.handleCreateExpense)
		authed.POST("/expenses/:id/approve", s.handleApproveExpense)
		authed.POST("/expenses/:id/delete", s.handleDeleteExpense)
		authed.POST("/payments", s.handleCreatePayment)
		authed.GET("/settlements/export", s.handleExportSettlement)

		admin := authed.Group("/", s.requireAdmin())
		{
			admin.GET("/admin", s.handleAdmin)
			admin.POST("/users/:id/approve", s.handleApproveUser)
			admin.POST("/users/:id/active", s.handleSetUserActive)
			admin.POST("/users/:id/delete", s.handleDeleteUser)
		}
	}
}

// Run starts the server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("Web UI listening", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and the cache cleanup routine.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopCacheCleanup)
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) startCacheCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.expensesCache.CleanExpired() +
				s.paymentsCache.CleanExpired() +
				s.settlementCache.CleanExpired() +
				s.usersCache.CleanExpired() +
				s.pendingCache.CleanExpired()
			if removed > 0 {
				s.logger.Debug("Cache cleanup completed", zap.Int("entries_removed", removed))
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// render executes a page template. Template failures answer 500; the data
// has already been fetched by then so this only trips on template bugs.
func (s *Server) render(c *gin.Context, status int, name string, data any) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := s.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		s.logger.Error("Template execution failed",
			zap.String("template", name),
			zap.Error(err))
		c.String(http.StatusInternalServerError, "template error")
	}
}
