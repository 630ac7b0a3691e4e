package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lighting-plan-server/config"
	"lighting-plan-server/handlers"
	"lighting-plan-server/services"
	"lighting-plan-server/store"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	log.Printf("Opening project database at %s...", cfg.Server.DBPath)
	db, err := store.OpenSQLite(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	repo := store.New(db)
	defer repo.Close()

	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	planningService := services.NewPlanningService(repo, cfg)
	planningHandler := handlers.NewPlanningHandler(planningService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"*"}
	r.Use(cors.New(corsConfig))

	planningHandler.RegisterRoutes(r)

	log.Printf("Lighting plan server starting on :%s", cfg.Server.Port)
	log.Printf("Spacing %.0f m, %.0f W per light, cable %s", cfg.Planning.SpacingM, cfg.Planning.LightPowerW, cfg.Calculation.CableType)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
