package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/profrate/internal/app/controllers"
	"github.com/yigit/profrate/internal/middleware"
)

// NewEngine returns a gin engine that reports wrong methods as 405 and
// unknown paths as 404 through the API error format
func NewEngine() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = true

	router.Use(gin.Recovery())
	router.NoMethod(middleware.MethodNotAllowed())
	router.NoRoute(middleware.RouteNotFound())
	return router
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	ratingController *controllers.RatingController,
	catalogController *controllers.CatalogController,
	authMiddleware *middleware.AuthMiddleware,
) {
	middleware.ConfigureBinding()

	router.Use(middleware.RequestLogger())
	router.Use(authMiddleware.ResolveIdentity())

	api := router.Group("/api")

	// --- Public routes ---
	api.POST("/login/", authController.Login)
	api.POST("/register/", authController.Register)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.RequireLogin())
	{
		authenticated.POST("/logout/", authController.Logout)
		authenticated.GET("/list/", catalogController.ListModules)
		authenticated.GET("/view/", catalogController.ListProfessors)
		authenticated.GET("/average/", catalogController.AverageRating)
		authenticated.POST("/rate/", ratingController.Rate)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
}
