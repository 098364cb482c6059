package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/whitelabel-hq/auth-service/internal/config"
	"github.com/whitelabel-hq/auth-service/internal/handler"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/service"
	"github.com/whitelabel-hq/auth-service/internal/utils"
	"github.com/whitelabel-hq/auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	tenantResolver := service.NewTenantResolver(repos.Company)
	googleOAuth := service.NewGoogleOAuth(cfg.Google, infra.Logger())

	sessionManager := service.NewSessionManager(
		repos,
		tenantResolver,
		googleOAuth,
		jwtManager,
		blacklistService,
		cfg.Security.BCryptCost,
		infra.Logger(),
	)
	userAdmin := service.NewUserAdminService(repos, cfg.Security.BCryptCost)

	authHandler := handler.NewAuthHandler(sessionManager, repos.User, cfg.Env == "production")
	companyHandler := handler.NewCompanyHandler(tenantResolver)
	adminHandler := handler.NewAdminHandler(userAdmin)

	router := gin.Default()
	router.Use(otelgin.Middleware("auth-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, companyHandler, adminHandler, sessionManager, repos, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	companyHandler *handler.CompanyHandler,
	adminHandler *handler.AdminHandler,
	sessions service.SessionManager,
	repos *repository.Repositories,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	rateLimit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)

	auth := router.Group("/auth")
	{
		auth.POST("/login", handler.RequireCompanyID(), rateLimit, authHandler.Login)
		auth.POST("/google", handler.RequireCompanyID(), rateLimit, authHandler.GoogleLogin)
		auth.POST("/signup", handler.RequireCompanyID(), rateLimit, authHandler.Signup)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/request_password_reset", handler.RequireCompanyID(), rateLimit, authHandler.RequestPasswordReset)
		auth.GET("/validate_token_password", authHandler.ValidateResetToken)
		auth.POST("/change_password", authHandler.ChangePassword)
		auth.POST("/send_activation", handler.RequireCompanyID(), rateLimit, authHandler.SendActivation)
		auth.POST("/activate", authHandler.Activate)
		auth.GET("/me", handler.AuthMiddleware(sessions), authHandler.Me)
	}

	router.POST("/company", companyHandler.Lookup)

	admin := router.Group("/admin")
	admin.Use(handler.AuthMiddleware(sessions), handler.RequireCompanyID(), handler.RequireAdmin(repos.User))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", adminHandler.CreateUser)
		admin.PATCH("/users/:id", adminHandler.UpdateUser)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
