package routes

import (
	"os"
	"strings"

	"betegna-backend/config"
	"betegna-backend/controllers"
	"betegna-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers bundles the handler sets that carry injected
// collaborators; the rest of the handlers are package functions.
type Controllers struct {
	Services  *controllers.ServiceController
	MenuItems *controllers.MenuItemController
	Media     *controllers.MediaController
	Profile   *controllers.ProfileController
	Feedback  *controllers.FeedbackController
}

func SetupRouter(ctrl Controllers) *gin.Engine {
	r := gin.Default()

	origins := allowedOrigins()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
		auth.POST("/logout", controllers.Logout)
	}

	// Public endpoints: lead capture from the storefront and the shared
	// category lookups.
	public := r.Group("/public")
	{
		public.POST("/leads", controllers.CreateLead)
		public.GET("/categories", controllers.GetCategories)
		public.GET("/sub-categories", controllers.GetSubCategories)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Media staging and cropping
		media := api.Group("/media")
		{
			media.POST("/stage", ctrl.Media.StageUpload)
			media.POST("/crop", ctrl.Media.Crop)
			media.POST("/release", ctrl.Media.Release)
			media.POST("/discard", ctrl.Media.DiscardDraft)
		}

		// Service routes
		services := api.Group("/services")
		{
			services.POST("", ctrl.Services.Create)
			services.GET("", ctrl.Services.List)
			services.GET("/:id", ctrl.Services.Get)
			services.PUT("/:id", ctrl.Services.Update)
			services.DELETE("/:id", ctrl.Services.Delete)
		}

		// Menu item routes
		menuItems := api.Group("/menu-items")
		{
			menuItems.POST("", ctrl.MenuItems.Create)
			menuItems.GET("", ctrl.MenuItems.List)
			menuItems.GET("/:id", ctrl.MenuItems.Get)
			menuItems.PUT("/:id", ctrl.MenuItems.Update)
			menuItems.DELETE("/:id", ctrl.MenuItems.Delete)
		}

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Handyman routes
		handymen := api.Group("/handymen")
		{
			handymen.POST("", controllers.CreateHandyman)
			handymen.GET("", controllers.GetHandymen)
			handymen.GET("/:id", controllers.GetHandyman)
			handymen.PUT("/:id", controllers.UpdateHandyman)
			handymen.DELETE("/:id", controllers.DeleteHandyman)
		}

		// Lead routes (creation is public, management is not)
		leads := api.Group("/leads")
		{
			leads.GET("", controllers.GetLeads)
			leads.PUT("/:id", controllers.UpdateLead)
			leads.DELETE("/:id", controllers.DeleteLead)
		}

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", controllers.CreateBooking)
			bookings.GET("", controllers.GetBookings)
			bookings.GET("/:id", controllers.GetBooking)
			bookings.PUT("/:id", controllers.UpdateBooking)
			bookings.DELETE("/:id", controllers.DeleteBooking)
		}

		// Availability routes
		availability := api.Group("/availability")
		{
			availability.GET("/weekly", controllers.GetWeeklyAvailability)
			availability.PUT("/weekly", controllers.UpdateWeeklyAvailability)
			availability.GET("/blocked", controllers.GetBlockedDates)
			availability.POST("/blocked", controllers.BlockDate)
			availability.DELETE("/blocked/:id", controllers.UnblockDate)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.GET("", controllers.GetNotifications)
			notifications.GET("/stream", controllers.StreamNotifications)
			notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			notifications.DELETE("/:id", controllers.DeleteNotification)
		}

		// Feedback routes
		feedback := api.Group("/feedback")
		{
			feedback.POST("", ctrl.Feedback.CreateFeedback)
			feedback.GET("", ctrl.Feedback.GetFeedback)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
		api.GET("/reports/revenue", controllers.GetRevenueReport)

		// Profile routes
		profile := api.Group("/profile")
		{
			profile.GET("", ctrl.Profile.GetProfile)
			profile.PUT("", ctrl.Profile.UpdateProfile)
			profile.PUT("/working-hours", ctrl.Profile.UpdateWorkingHours)
			profile.PUT("/notifications", ctrl.Profile.UpdateNotificationSettings)
		}
	}

	return r
}

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
