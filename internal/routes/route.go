package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/staybook/internal/container"
	"github.com/joshua-takyi/staybook/internal/handlers"
	"github.com/joshua-takyi/staybook/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secure := cfg.IsProduction()
	auth := middleware.AuthMiddleware([]byte(cfg.JWTSecret), container.UserService, container.Logger)

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "staybook-api",
			})
		})

		// public routes
		v1.POST("/auth/register", handlers.Register(container.UserService))
		v1.POST("/auth/verify-otp", handlers.VerifyOTP(container.UserService))
		v1.POST("/auth/resend-otp", handlers.ResendOTP(container.UserService))
		v1.POST("/auth/login", handlers.Login(container.UserService, secure))
		v1.POST("/auth/forgot-password", handlers.ForgotPassword(container.UserService))
		v1.POST("/auth/reset-password", handlers.ResetPassword(container.UserService))
		v1.POST("/auth/logout", handlers.Logout(secure))

		v1.GET("/properties", handlers.ListProperties(container.PropertyService))
		v1.GET("/properties/:id", handlers.GetProperty(container.PropertyService))
		v1.GET("/properties/:id/reviews", handlers.ListPropertyReviews(container.ReviewService))
	}

	protected := v1.Group("/")
	protected.Use(auth)

	authRoutes := protected.Group("/auth")
	{
		authRoutes.GET("/me", handlers.Me(container.UserService))
		authRoutes.PATCH("/me", handlers.UpdateProfile(container.UserService))
		authRoutes.POST("/become-host", handlers.BecomeHost(container.UserService))
	}

	propertyRoutes := protected.Group("/properties")
	{
		propertyRoutes.POST("", handlers.CreateProperty(container.PropertyService))
		propertyRoutes.GET("/mine", handlers.ListMyProperties(container.PropertyService))
		propertyRoutes.PATCH("/:id", handlers.UpdateProperty(container.PropertyService))
		propertyRoutes.DELETE("/:id", handlers.DeleteProperty(container.PropertyService))
		propertyRoutes.POST("/:id/images", handlers.UploadPropertyImages(container.PropertyService))
		propertyRoutes.GET("/:id/bookings", handlers.GetPropertyBookings(container.BookingService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/mine", handlers.GetMyBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.POST("/:id/cancel", handlers.CancelBooking(container.BookingService))
	}

	reviewRoutes := protected.Group("/reviews")
	{
		reviewRoutes.POST("", handlers.CreateReview(container.ReviewService))
		reviewRoutes.DELETE("/:id", handlers.DeleteReview(container.ReviewService))
	}

	favouriteRoutes := protected.Group("/favourites")
	{
		favouriteRoutes.GET("", handlers.GetUserFavourites(container.FavouritesService))
		favouriteRoutes.POST("/:propertyId", handlers.AddToFavourites(container.FavouritesService))
		favouriteRoutes.DELETE("/:propertyId", handlers.RemoveFromFavourite(container.FavouritesService))
	}

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.GET("/stats", handlers.DashboardStats(container.AdminService))
		adminRoutes.GET("/users", handlers.AdminListUsers(container.AdminService))
		adminRoutes.DELETE("/users/:id", handlers.AdminDeleteUser(container.AdminService))
		adminRoutes.PATCH("/users/:id/role", handlers.AdminSetUserRole(container.AdminService))
		adminRoutes.GET("/bookings", handlers.AdminListBookings(container.AdminService))
		adminRoutes.GET("/properties", handlers.AdminListProperties(container.AdminService))
		adminRoutes.POST("/sweep", handlers.RunSweep(container.AutomationService))
		adminRoutes.GET("/reports/:resource", handlers.ExportReport(container.AdminService))
	}

	return r
}
