// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/infrastructure/database/redis"
	"github.com/your-org/easystock-backend/internal/interfaces/http/handlers"
	"github.com/your-org/easystock-backend/internal/interfaces/http/middleware"
	"github.com/your-org/easystock-backend/internal/pkg/line"
	"gorm.io/gorm"
)

// SetupRoutes wires every endpoint under the given API group. Everything
// except register/login/refresh sits behind the auth middleware; admin-only
// groups add the admin middleware on top.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	lineService := line.NewService(cfg, redisClient, logger)

	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)
	productHandler := handlers.NewProductHandler(db, cfg, lineService)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	listingHandler := handlers.NewListingHandler(db, cfg)
	movementHandler := handlers.NewMovementHandler(db, cfg, lineService)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg)
	taskHandler := handlers.NewTaskHandler(db, cfg)
	calendarHandler := handlers.NewCalendarHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, redisClient, cfg)
	lineHandler := handlers.NewLineHandler(db, cfg, lineService)

	// Auth
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PATCH("/profile", authHandler.UpdateProfile)
			protected.POST("/heartbeat", authHandler.Heartbeat)
		}
	}

	// Products and categories
	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.POST("", productHandler.CreateProduct)
		products.GET("/export", productHandler.ExportProducts)
		products.GET("/low-stock", analyticsHandler.GetLowStock)
		products.GET("/out-of-stock", analyticsHandler.GetOutOfStock)
		products.GET("/:id", productHandler.GetProduct)
		products.PATCH("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
		products.POST("/:id/unlist", productHandler.UnlistProduct)
		products.POST("/:id/adjust-stock", productHandler.AdjustStock)
	}

	categories := rg.Group("/categories")
	categories.Use(middleware.AuthMiddleware(cfg))
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.POST("", categoryHandler.CreateCategory)
	}

	// Storefront listings
	listings := rg.Group("/listings")
	listings.Use(middleware.AuthMiddleware(cfg))
	{
		listings.GET("", listingHandler.GetListings)
		listings.POST("", listingHandler.CreateListing)
		listings.GET("/:id", listingHandler.GetListing)
		listings.PATCH("/:id", listingHandler.UpdateListing)
		listings.DELETE("/:id", listingHandler.DeleteListing)
		listings.POST("/:id/unlist", listingHandler.UnlistListing)
	}

	// Stock movements
	stock := rg.Group("")
	stock.Use(middleware.AuthMiddleware(cfg))
	{
		stock.POST("/receive-products", movementHandler.ReceiveProducts)
		stock.POST("/issue-products", movementHandler.IssueProducts)
		stock.GET("/movement-history", movementHandler.GetHistory)
		stock.GET("/movement-history/export", movementHandler.ExportHistory)
		stock.GET("/movement-totals", analyticsHandler.GetDailyTotals)
	}

	// Dashboards
	dashboards := rg.Group("")
	dashboards.Use(middleware.AuthMiddleware(cfg))
	{
		dashboards.GET("/dashboard-stats", analyticsHandler.GetDashboardStats)
		dashboards.GET("/employee-dashboard/overview", analyticsHandler.GetEmployeeOverview)
		dashboards.GET("/best-sellers/top_products", analyticsHandler.GetBestSellers)
		dashboards.GET("/best-sellers/festival_forecast", calendarHandler.GetFestivalForecast)
		dashboards.GET("/best-sellers/category_analysis", calendarHandler.GetFestivalCategoryAnalysis)
		dashboards.POST("/best-sellers/bulk_create", calendarHandler.BulkCreateBestSellers)
	}

	adminDashboard := rg.Group("/admin-dashboard")
	adminDashboard.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		adminDashboard.GET("/financial", analyticsHandler.GetFinancialSummary)
		adminDashboard.GET("/category_breakdown", analyticsHandler.GetCategoryBreakdown)
		adminDashboard.GET("/top_products", analyticsHandler.GetTopProductsByValue)
	}

	// Tasks
	tasks := rg.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware(cfg))
	{
		tasks.GET("", taskHandler.GetTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/my_tasks", taskHandler.GetMyTasks)
		tasks.GET("/urgent", taskHandler.GetUrgentTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/update_status", taskHandler.UpdateTaskStatus)
	}

	// Calendar
	festivals := rg.Group("/festivals")
	festivals.Use(middleware.AuthMiddleware(cfg))
	{
		festivals.GET("", calendarHandler.GetFestivals)
		festivals.POST("", calendarHandler.CreateFestival)
		festivals.GET("/upcoming", calendarHandler.GetUpcomingFestivals)
		festivals.GET("/:id", calendarHandler.GetFestival)
		festivals.PUT("/:id", calendarHandler.UpdateFestival)
		festivals.DELETE("/:id", calendarHandler.DeleteFestival)
	}

	events := rg.Group("/custom-events")
	events.Use(middleware.AuthMiddleware(cfg))
	{
		events.GET("", calendarHandler.GetEvents)
		events.POST("", calendarHandler.CreateEvent)
		events.GET("/calendar", calendarHandler.GetEvents)
		events.GET("/upcoming", calendarHandler.GetUpcomingEvents)
		events.PUT("/:id", calendarHandler.UpdateEvent)
		events.DELETE("/:id", calendarHandler.DeleteEvent)
	}

	// Staff management
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/online", userHandler.GetOnlineUsers)

		admin := users.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("", userHandler.GetUsers)
			admin.PATCH("/:id", userHandler.UpdateUser)
			admin.DELETE("/:id", userHandler.DeactivateUser)
		}
	}

	// LINE messaging
	lineGroup := rg.Group("/line")
	lineGroup.Use(middleware.AuthMiddleware(cfg))
	{
		lineGroup.POST("/test", lineHandler.TestMessage)
		lineGroup.POST("/send-alerts", lineHandler.SendStockAlerts)
		lineGroup.GET("/connect-code", lineHandler.GetConnectCode)
	}
}
