package main

import (
	"log"

	"asset_manager_go/config"
	"asset_manager_go/db"
	"asset_manager_go/handlers"
	"asset_manager_go/models"
	"asset_manager_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.Organization{},
		&models.AssetCategoryClass{},
		&models.AssetCategory{},
		&models.FormDefinition{},
		&models.FormField{},
		&models.Asset{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize storage (R2 with local fallback)
	services.InitializeStorage(cfg)

	// Code image labels use the configured font when present
	services.Renderer = services.NewCodeRenderer(cfg.CodeFontPath)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Locally stored uploads and code images
	e.Static("/static", "static")

	// Organizations
	e.POST("/api/organizations", handlers.CreateOrganizationHandler)
	e.GET("/api/organizations/:id", handlers.GetOrganizationHandler)
	e.PUT("/api/organizations/:id", handlers.UpdateOrganizationHandler)
	e.GET("/api/organizations/:id/assets/export", handlers.ExportAssetsHandler)

	// Categories and classes
	e.POST("/api/category-classes", handlers.CreateCategoryClassHandler)
	e.POST("/api/categories", handlers.CreateCategoryHandler)
	e.GET("/api/categories", handlers.ListCategoriesHandler)

	// Forms
	e.POST("/api/forms", handlers.CreateFormHandler)
	e.GET("/api/forms/:id", handlers.GetFormHandler)
	e.PUT("/api/forms/:id/tag-config", handlers.UpdateFormTagConfigHandler)

	// Assets
	e.POST("/api/assets", handlers.CreateAssetHandler)
	e.GET("/api/assets", handlers.ListAssetsHandler)
	e.GET("/api/assets/:id", handlers.GetAssetHandler)
	e.PUT("/api/assets/:id", handlers.UpdateAssetHandler)
	e.GET("/api/assets/:id/codes/:kind", handlers.AssetCodeImageHandler)
	e.POST("/api/assets/:id/codes", handlers.RegenerateAssetCodesHandler)
	e.POST("/api/assets/print-sheet", handlers.PrintSheetHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
