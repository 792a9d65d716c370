package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medwelfare/welfare-backend/internal/config"
	"github.com/medwelfare/welfare-backend/internal/handler"
	"github.com/medwelfare/welfare-backend/internal/middleware"
	"github.com/medwelfare/welfare-backend/internal/repository/directory"
	"github.com/medwelfare/welfare-backend/internal/repository/postgres"
	"github.com/medwelfare/welfare-backend/internal/service"
	"github.com/medwelfare/welfare-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	allocationRepo := postgres.NewAllocationRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	assignmentRepo := postgres.NewAssignmentRepository(pool)

	// External employee directory client
	directoryClient := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.APIKey, cfg.Directory.Timeout)

	// Initialize services
	authService := service.NewAuthService(userRepo, assignmentRepo, directoryClient)
	balanceService := service.NewBalanceService(allocationRepo, transactionRepo)
	claimService := service.NewClaimService(transactionRepo)
	budgetService := service.NewBudgetService(allocationRepo, directoryClient)
	categoryService := service.NewCategoryService(categoryRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo)
	userService := service.NewUserService(userRepo, cfg.BcryptCost)

	// WebSocket hub for the live activity feed
	hub := websocket.NewHub()
	claimService.SetEventPublisher(hub)
	budgetService.SetEventPublisher(hub)
	categoryService.SetEventPublisher(hub)

	// Initialize auth middleware and login throttle
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.TokenTTL)
	loginLimiter := middleware.NewLoginRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst)
	defer loginLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, authMiddleware)
	benefitHandler := handler.NewBenefitHandler(balanceService, claimService, budgetService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	userHandler := handler.NewUserHandler(userService)
	wsHandler := handler.NewWebSocketHandler(hub, authMiddleware, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, loginLimiter, authHandler, benefitHandler, categoryHandler, assignmentHandler, userHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
