// Package web provides the Daily Diet HTTP server: routing, sessions, HTTPS
// serving and background job scheduling.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dailydiet/daily-diet/config"
	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/util/common"
	"github.com/dailydiet/daily-diet/util/random"
	"github.com/dailydiet/daily-diet/web/cache"
	"github.com/dailydiet/daily-diet/web/controller"
	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/job"
	"github.com/dailydiet/daily-diet/web/middleware"
	"github.com/dailydiet/daily-diet/web/network"
	"github.com/dailydiet/daily-diet/web/service"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Server represents the web server with its services and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	settings *config.Settings
	redis    *cache.Redis

	userService  *service.UserService
	mealService  *service.MealService
	auditService *service.AuditLogService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server on db. rc backs the redis session store, the
// login rate limiter and the metrics cache; it may be nil when the cookie
// store is used.
func NewServer(settings *config.Settings, db *gorm.DB, rc *cache.Redis) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		settings:     settings,
		redis:        rc,
		userService:  service.NewUserService(db),
		mealService:  service.NewMealService(db, rc),
		auditService: service.NewAuditLogService(db),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *Server) sessionStore() (sessions.Store, error) {
	secret := s.settings.SecretKey
	if secret == "" {
		logger.Warning("DIET_SECRET_KEY is not set, sessions will not survive a restart")
		secret = random.Seq(32)
	}

	if s.redis == nil {
		return nil, errors.New("session store requires a redis connection")
	}
	store := cache.NewRedisStore(s.redis.Client(), []byte(secret))
	secure := s.settings.CertFile != "" && s.settings.KeyFile != ""
	store.Options(session.Options(s.settings.SessionMaxAge*60, secure))
	return store, nil
}

// initRouter initializes Gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Errorf("[%s] panic: %v", middleware.GetRequestID(c), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, entity.Msg{Msg: "internal error"})
	}))
	engine.Use(middleware.RequestID(), middleware.AccessLog())
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
	))

	store, err := s.sessionStore()
	if err != nil {
		return nil, err
	}
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(middleware.AuditMiddleware(s.auditService))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginLimit := middleware.RateLimitMiddleware(s.redis, middleware.LoginRateLimitConfig(s.settings.LoginRateLimit))

	g := engine.Group("/")
	controller.NewIndexController(g, s.userService, loginLimit)
	controller.NewUserController(g, s.userService)
	controller.NewMealController(g, s.userService, s.mealService)
	controller.NewAuditController(g, s.userService, s.auditService)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.Msg{Msg: "not found"})
	})

	return engine, nil
}

// Handler returns the routed engine without starting a listener.
func (s *Server) Handler() (http.Handler, error) {
	return s.initRouter()
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	days := s.settings.AuditRetentionDays
	if days <= 0 {
		logger.Info("audit log retention disabled")
		return
	}
	if _, err := s.cron.AddJob("@daily", job.NewAuditCleanupJob(s.auditService, days)); err != nil {
		logger.Warning("Add AuditCleanupJob error", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.settings.Listen, strconv.Itoa(s.settings.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	certFile, keyFile := s.settings.CertFile, s.settings.KeyFile
	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			listener.Close()
			return common.NewErrorf("load certificates: %v", err)
		}
		cfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
		listener = network.NewAutoHttpsListener(listener)
		listener = tls.NewListener(listener, cfg)
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:     engine,
		BaseContext: func(net.Listener) context.Context { return s.ctx },
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server and its cron jobs.
func (s *Server) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err1 = s.httpServer.Shutdown(ctx)
		cancel()
	}
	s.cancel()
	if s.listener != nil {
		err2 = s.listener.Close()
		if errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}
