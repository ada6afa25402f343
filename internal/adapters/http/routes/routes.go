package routes

import (
	"teenskill-api/internal/adapters/http/handlers"
	"teenskill-api/internal/adapters/http/middleware"
	"teenskill-api/internal/adapters/persistence/repositories"
	"teenskill-api/internal/config"
	"teenskill-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT)
	userService := services.NewUserService(userRepo)
	safetyService := services.NewSafetyService(cfg.Safety)
	taskService := services.NewTaskService(taskRepo, userRepo, messageRepo, cfg.Reward.CompletionXP)
	chatService := services.NewChatService(messageRepo, taskRepo)
	dashboardService := services.NewDashboardService(taskRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService, safetyService)
	chatHandler := handlers.NewChatHandler(chatService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler,
		taskHandler, chatHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	chatHandler *handlers.ChatHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate-limited)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, userHandler, cfg)

	// Profile routes (Authenticated users)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Task routes (marketplace + lifecycle)
	taskRoutes := router.Group("/tasks")
	setupTaskRoutes(taskRoutes, taskHandler, chatHandler, cfg)

	// Dashboard routes
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.NoCacheHeaders())
	dashboardRoutes.Get("/", dashboardHandler.Stats)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, userHandler *handlers.UserHandler, cfg *config.Config) {
	// Public routes (5 req/min/IP against credential stuffing)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders(), userHandler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures profile routes (Authenticated)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/me", middleware.NoCacheHeaders(), handler.Me)
	router.Put("/me", handler.UpdateProfile)
	router.Put("/me/payment", handler.UpdatePaymentDetails)
	router.Put("/me/password", handler.ChangePassword)
}

// setupTaskRoutes configures the task lifecycle and chat routes
func setupTaskRoutes(router fiber.Router, handler *handlers.TaskHandler, chatHandler *handlers.ChatHandler, cfg *config.Config) {
	// Public marketplace listing (short cache absorbs polling)
	router.Get("/", middleware.MarketplaceCache(), handler.ListOpen)

	// Authenticated routes
	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))

	authed.Get("/my", middleware.NoCacheHeaders(), handler.ListMine)
	authed.Get("/quota", middleware.FreelancerOnly(), middleware.NoCacheHeaders(), handler.Quota)

	// Posting (clients only)
	authed.Post("/", middleware.ClientOnly(), handler.Create)
	authed.Post("/screen", middleware.ClientOnly(), handler.Screen)

	// Detail
	authed.Get("/:id", handler.Get)
	authed.Delete("/:id", middleware.ClientOnly(), handler.Delete)

	// Lifecycle transitions (3 req/min/IP on money-adjacent operations)
	authed.Post("/:id/take", middleware.FreelancerOnly(), middleware.StrictRateLimiter(), handler.Take)
	authed.Post("/:id/submit", middleware.FreelancerOnly(), handler.Submit)
	authed.Post("/:id/complete", middleware.ClientOnly(), middleware.StrictRateLimiter(), handler.Complete)

	// Per-task chat (participants enforced in the service)
	authed.Get("/:id/messages", chatHandler.History)
	authed.Post("/:id/messages", chatHandler.Send)
}
