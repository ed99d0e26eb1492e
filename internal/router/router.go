// Package router assembles the HTTP API: middleware, public and protected routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "expensetracker/internal/docs" // Register swagger docs
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/events"
	"expensetracker/internal/handlers"
	"expensetracker/internal/middleware"
	"expensetracker/internal/response"
	"expensetracker/internal/services"
)

// Deps are the collaborators the routes need.
type Deps struct {
	DB          *gorm.DB
	Tokens      *middleware.TokenManager
	Publisher   events.Publisher
	CORSOrigins []string
	BcryptCost  int
}

// New builds the gin engine with every route mounted under /api.
func New(deps Deps) *gin.Engine {
	userService := services.NewUserServiceWithCost(deps.DB, deps.BcryptCost)
	transactionService := services.NewTransactionService(deps.DB)
	auditService := services.NewAuditService(deps.DB)

	authHandler := handlers.NewAuthHandler(userService, auditService, deps.Tokens)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService, deps.Publisher)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeaders()))
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	// Health check endpoint
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/stats", transactionHandler.GetTransactionStats)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	return router
}
