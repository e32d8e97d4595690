package main

import (
	"log"

	"inkwell/config"
	"inkwell/database"
	"inkwell/routes"
	"inkwell/services"

	"github.com/joho/godotenv"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "inkwell/docs"
)

// @title Inkwell Blog API
// @version 1.0
// @description Blog content API: categorized, paginated, searchable posts with admin-gated writes.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:4001
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.Load()

	var backend *services.Backend
	if cfg.BackendLive() {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		backend = services.NewLiveBackend(db, cfg)
	} else {
		log.Println("Store not configured, running in mock mode")
		backend = services.NewMockBackend()
	}
	log.Printf("Backend mode: %s", backend.Mode())

	r := routes.NewRouter(backend, cfg.AllowedOrigins)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Swagger docs available at: http://localhost:%s/swagger/index.html", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
