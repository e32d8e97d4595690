package routes

import (
	"inkwell/controllers"
	"inkwell/handlers"
	"inkwell/middleware"
	"inkwell/services"

	"github.com/gin-gonic/gin"
)

// NewRouter wires services and controllers over the chosen backend.
func NewRouter(backend *services.Backend, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Logger())
	r.Use(middleware.ErrorHandler())

	hubService := services.NewHubService()
	authService := services.NewAuthService(backend.Identity)
	postService := services.NewPostService(backend.Posts, backend.Blobs, hubService)
	categoryService := services.NewCategoryService(backend.Categories)
	userService := services.NewUserService(backend.Users, backend.Blobs)

	ctrl := Controllers{
		Post:     controllers.NewPostController(postService),
		Category: controllers.NewCategoryController(categoryService),
		Auth:     controllers.NewAuthController(authService),
		User:     controllers.NewUserController(userService),
		Events:   handlers.NewWebSocketHandler(hubService, allowedOrigins),
	}
	if reader, ok := backend.Blobs.(services.BlobReader); ok {
		ctrl.Storage = controllers.NewStorageController(reader)
	}

	SetupRoutes(r, authService, backend.Mode(), ctrl)
	return r
}
