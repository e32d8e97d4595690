package routes

import (
	"net/http"

	"inkwell/controllers"
	"inkwell/handlers"
	"inkwell/middleware"
	"inkwell/services"

	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

// Controllers groups the handlers SetupRoutes mounts. Storage is nil when
// the blob store cannot serve its content.
type Controllers struct {
	Post     *controllers.PostController
	Category *controllers.CategoryController
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Storage  *controllers.StorageController
	Events   *handlers.WebSocketHandler
}

func SetupRoutes(r *gin.Engine, authService *services.AuthService, mode string, ctrl Controllers) {
	endpoints := gin.H{
		"auth":       []string{"POST /auth/register", "POST /auth/login", "GET /auth/get-user", "POST /auth/logout", "PUT /auth/reset-password"},
		"posts":      []string{"GET /posts", "GET /posts/:postId", "GET /posts/:postId/html", "POST /posts", "PUT /posts/:postId", "DELETE /posts/:postId", "GET /posts/admin", "GET /posts/admin/:postId", "GET /posts/admin/ws"},
		"categories": []string{"GET /categories", "GET /categories/:id", "POST /categories", "PUT /categories/:id", "DELETE /categories/:id"},
		"profile":    []string{"PUT /profile", "POST /profile/avatar"},
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Blog API Server is running!",
			"version":   Version,
			"status":    mode,
			"endpoints": endpoints,
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.AuthRequired(authService)
	requireAdmin := middleware.AdminRequired()

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.GET("/get-user", ctrl.Auth.GetUser)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.PUT("/reset-password", ctrl.Auth.ResetPassword)
	}

	posts := r.Group("/posts")
	{
		posts.GET("", ctrl.Post.GetPosts)
		posts.GET("/:postId", ctrl.Post.GetPost)
		posts.GET("/:postId/html", ctrl.Post.GetPostHTML)
		posts.POST("", requireAuth, requireAdmin, ctrl.Post.CreatePost)
		posts.PUT("/:postId", requireAuth, requireAdmin, ctrl.Post.UpdatePost)
		posts.DELETE("/:postId", requireAuth, requireAdmin, ctrl.Post.DeletePost)
	}

	admin := r.Group("/posts/admin")
	admin.Use(requireAuth, requireAdmin)
	{
		admin.GET("", ctrl.Post.GetAllPosts)
		admin.GET("/ws", ctrl.Events.HandleWebSocket)
		admin.GET("/:postId", ctrl.Post.GetPostAdmin)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", ctrl.Category.GetCategories)
		categories.GET("/:id", ctrl.Category.GetCategory)
		categories.POST("", requireAuth, requireAdmin, ctrl.Category.CreateCategory)
		categories.PUT("/:id", requireAuth, requireAdmin, ctrl.Category.UpdateCategory)
		categories.DELETE("/:id", requireAuth, requireAdmin, ctrl.Category.DeleteCategory)
	}

	profile := r.Group("/profile")
	profile.Use(requireAuth)
	{
		profile.PUT("", ctrl.User.UpdateProfile)
		profile.POST("/avatar", ctrl.User.UploadAvatar)
	}

	if ctrl.Storage != nil {
		r.GET("/storage/:bucket/*path", ctrl.Storage.GetObject)
	}
}
