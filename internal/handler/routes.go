package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.LoginRateLimiter,
	authHandler *AuthHandler,
	benefitHandler *BenefitHandler,
	categoryHandler *CategoryHandler,
	assignmentHandler *AssignmentHandler,
	userHandler *UserHandler,
	wsHandler *WebSocketHandler,
) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes; login is public but throttled per client address
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login, loginLimiter.Middleware())
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())
	auth.POST("/logout", authHandler.Logout, authMiddleware.Authenticate())

	// Benefit routes (protected)
	benefits := e.Group("/benefits")
	benefits.Use(authMiddleware.Authenticate())
	benefits.GET("/balances", benefitHandler.GetBalances)
	benefits.GET("/history", benefitHandler.GetHistory)
	benefits.GET("/budget", benefitHandler.GetBudget)
	benefits.GET("/types", categoryHandler.GetCategories)
	benefits.GET("/employees", benefitHandler.GetEmployees)
	benefits.GET("/assignments", assignmentHandler.GetOwnAssignments)

	// Staff and superadmin routes
	staff := middleware.RequireRoles(domain.RoleStaff, domain.RoleSuperadmin)
	benefits.POST("/claim", benefitHandler.SubmitClaim, staff)
	benefits.GET("/budgets", benefitHandler.GetBudgets, staff)
	benefits.GET("/search", benefitHandler.Search, staff)
	benefits.GET("/employee/:code", benefitHandler.GetEmployee, staff)

	// Superadmin-only routes
	superadmin := middleware.RequireRoles(domain.RoleSuperadmin)
	benefits.GET("/summary", benefitHandler.GetSummary, superadmin)
	benefits.POST("/budget", benefitHandler.SetBudget, superadmin)
	benefits.POST("/topup", benefitHandler.TopUp, superadmin)
	benefits.POST("/topup-bulk", benefitHandler.BulkTopUp, superadmin)
	benefits.POST("/types", categoryHandler.CreateCategory, superadmin)
	benefits.DELETE("/types/:id", categoryHandler.DeleteCategory, superadmin)
	benefits.GET("/admins", assignmentHandler.GetAssignments, superadmin)
	benefits.POST("/admins", assignmentHandler.CreateAssignment, superadmin)
	benefits.POST("/admins/remove", assignmentHandler.RemoveAssignment, superadmin)

	// Local account routes (protected, superadmin enforced in service)
	users := e.Group("/users")
	users.Use(authMiddleware.Authenticate(), superadmin)
	users.GET("", userHandler.GetUsers)
	users.POST("", userHandler.CreateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	// Live activity feed; token is validated inside the handler
	e.GET("/ws", wsHandler.HandleWS)
}
