package main

import (
	"context"
	"log"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/config"
	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/controllers"
	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/routes"
	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/services"
)

func main() {
	settings := config.Load()
	db := config.ConnectDB(settings)

	images, err := services.NewS3ImageStorage(context.Background(), settings)
	if err != nil {
		log.Fatalf("s3 init failed: %v", err)
	}

	hub := services.NewRealtimeHub()
	ai := services.NewAIAnalysisService(services.NewOpenAIService(settings))
	dailyScores := services.NewDailyScoreService(db)

	ctl := routes.Controllers{
		Auth:     controllers.NewAuthController(services.NewAuthService(db, settings.JWTSecret)),
		User:     controllers.NewUserController(services.NewUserService(db, images)),
		Product:  controllers.NewProductController(services.NewProductService(db, images)),
		Scan:     controllers.NewScanController(services.NewScanService(db, ai, dailyScores, images, hub), services.NewScanDetailService(db)),
		Home:     controllers.NewHomeController(services.NewHomeService(db, dailyScores)),
		Realtime: controllers.NewRealtimeController(hub),
	}

	r := routes.SetupRouter(ctl, []byte(settings.JWTSecret))
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
