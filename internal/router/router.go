package router

import (
	"github.com/gin-gonic/gin"

	"github.com/nvaghela/dukaan-backend/config"
	"github.com/nvaghela/dukaan-backend/internal/app/controller"
	"github.com/nvaghela/dukaan-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	kycController    *controller.KYCController
	reviewController *controller.ReviewController
	eventsController *controller.EventsController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	kycController *controller.KYCController,
	reviewController *controller.ReviewController,
	eventsController *controller.EventsController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		kycController:    kycController,
		reviewController: reviewController,
		eventsController: eventsController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "DUKAAN KYC API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		kyc := v1.Group("/kyc", r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("seller", "admin"))
		{
			kyc.GET("/status", r.kycController.GetStatus)
			kyc.GET("/verified", r.kycController.IsVerified)
			kyc.GET("/details", r.kycController.GetDetails)
			kyc.PUT("/details", r.kycController.SaveDetails)
			kyc.POST("/documents/:slot", r.kycController.UploadDocument)
			kyc.GET("/documents/:slot", r.kycController.DownloadDocument)
			kyc.DELETE("/documents/:slot", r.kycController.RemoveDocument)
			kyc.GET("/history", r.kycController.GetHistory)
			kyc.GET("/events", r.eventsController.Connect)
		}

		admin := v1.Group("/admin/kyc", r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/submissions", r.reviewController.ListSubmissions)
			admin.GET("/submissions/:id", r.reviewController.GetSubmission)
			admin.POST("/submissions/:id/approve", r.reviewController.Approve)
			admin.POST("/submissions/:id/reject", r.reviewController.Reject)
			admin.POST("/submissions/:id/documents/:slot", r.reviewController.UploadDocument)
			admin.GET("/submissions/:id/documents/:slot", r.reviewController.DownloadDocument)
			admin.GET("/submissions/:id/history", r.reviewController.GetHistory)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
