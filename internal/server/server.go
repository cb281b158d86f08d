package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sportclub/internal/config"
	"sportclub/internal/logger"
	"sportclub/internal/member"
	"sportclub/internal/membership"
	"sportclub/internal/reminder"
	"sportclub/internal/scheduler"
	"sportclub/internal/sweeper"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Config      *config.Config
	Members     member.Service
	Memberships membership.Service
	Sweeper     *sweeper.Sweeper
	Notifier    *reminder.Notifier
	// Scheduler is nil when scheduling is disabled.
	Scheduler *scheduler.Host
	Checks    map[string]Check
}

type Server struct {
	router  *gin.Engine
	config  *config.Config
	limiter *ClientLimiter
}

func New(d Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware(d.Config.CORSOrigins))

	memberHandler := member.NewHandler(d.Members)
	membershipHandler := membership.NewHandler(d.Memberships)
	jobs := &JobHandler{
		sweeper:     d.Sweeper,
		notifier:    d.Notifier,
		scheduler:   d.Scheduler,
		location:    d.Config.Location,
		horizonDays: d.Config.ReminderHorizonDays,
	}

	if d.Config.PprofEnabled {
		pprof.Register(router, "/debug/pprof")
	}

	router.GET("/health", Health(d.Checks))
	router.GET("/metrics", Metrics())

	limiter := NewClientLimiter(
		d.Config.RateLimitRPS,
		d.Config.RateLimitBurst,
		d.Config.RateLimitTTL,
		d.Config.RateLimitCleanupInterval,
	)

	api := router.Group("/api")
	api.Use(limiter.Middleware())
	{
		api.POST("/members", memberHandler.Register)
		api.GET("/members/:memberID", memberHandler.Get)
		api.GET("/members/:memberID/memberships", membershipHandler.ListForMember)
		api.GET("/members/:memberID/memberships/active", membershipHandler.ActiveForMember)

		api.GET("/membership-types", membershipHandler.ListTypes)
		api.POST("/membership-types/quote", membershipHandler.Quote)

		api.POST("/memberships", membershipHandler.Purchase)
		api.GET("/memberships/:membershipID", membershipHandler.Get)
		api.GET("/memberships/:membershipID/history", membershipHandler.History)
		api.POST("/memberships/:membershipID/visits", membershipHandler.RecordVisit)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/membership-types", membershipHandler.CreateType)
		admin.POST("/membership-types/:typeID/archive", membershipHandler.ArchiveType)
		admin.POST("/memberships/:membershipID/cancel", membershipHandler.Cancel)

		admin.GET("/jobs", jobs.List)
		admin.POST("/jobs/sweep", jobs.Sweep)
		admin.POST("/jobs/reminders", jobs.Reminders)
		admin.POST("/jobs/:name/run", jobs.Run)
	}

	return &Server{
		router:  router,
		config:  d.Config,
		limiter: limiter,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases background resources held by the router.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
