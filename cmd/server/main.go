package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-wizard-backend/internal/config"
	"listing-wizard-backend/internal/database"
	"listing-wizard-backend/internal/handlers"
	"listing-wizard-backend/internal/imagecodec"
	"listing-wizard-backend/internal/listings"
	"listing-wizard-backend/internal/logging"
	"listing-wizard-backend/internal/middleware"
	"listing-wizard-backend/internal/session"
	"listing-wizard-backend/internal/storage"
	"listing-wizard-backend/internal/submit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Init(cfg.Environment)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Session storage: Postgres when configured, otherwise the quota-bounded memory
	// store. The wizard works either way; persistence is best-effort.
	var sessionStore storage.SessionStore
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize migrator: %v", err)
		}
		if err := migrator.Run(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		migrator.Close()

		pgStore, err := storage.NewPostgresStore(cfg.DatabaseURL, cfg.SessionQuotaBytes)
		if err != nil {
			log.Fatalf("Failed to initialize session store: %v", err)
		}
		defer pgStore.Close()
		sessionStore = pgStore
	} else {
		logging.Logger.Warn("DATABASE_URL not set, drafts will not survive restarts")
		sessionStore = storage.NewMemoryStore(cfg.SessionQuotaBytes)
	}

	listingClient := listings.NewClient(cfg.ListingAPIBaseURL, cfg.ListingAPIKey)
	assembler := submit.NewAssembler(listingClient)

	previews := imagecodec.NewPreviewRegistry()
	registry := session.NewRegistry(sessionStore, previews, cfg.SessionTTL)
	defer registry.Close()
	if err := registry.StartSweeper("@every 10m"); err != nil {
		log.Fatalf("Failed to start session sweeper: %v", err)
	}

	previewBaseURL := cfg.BaseURL + "/previews"
	draftHandler := handlers.NewDraftHandler(registry, previewBaseURL)
	photosHandler := handlers.NewPhotosHandler(registry, previews, previewBaseURL)
	submitHandler := handlers.NewSubmitHandler(registry, assembler)

	router := gin.Default()

	router.GET("/health", handlers.HealthHandler)

	// Preview handles are opaque revocable tokens; a released handle 404s.
	router.GET("/previews/:token", photosHandler.Preview)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/draft", draftHandler.GetDraft)
	api.PATCH("/draft", draftHandler.UpdateDraft)
	api.POST("/draft/advance", draftHandler.Advance)
	api.POST("/draft/goto", draftHandler.GoTo)
	api.POST("/draft/reset", draftHandler.Reset)

	api.POST("/draft/photos", photosHandler.Upload)
	api.GET("/draft/photos", photosHandler.List)
	api.DELETE("/draft/photos/:photo_id", photosHandler.Delete)

	api.POST("/draft/submit", submitHandler.Submit)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
