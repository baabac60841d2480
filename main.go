package main

import (
	"fmt"
	"log"
	"os"

	"betegna-backend/config"
	"betegna-backend/controllers"
	"betegna-backend/models"
	"betegna-backend/routes"
	"betegna-backend/services"
	"betegna-backend/storage"

	evbus "github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.InitLogger()
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Provider{},
		&models.Category{},
		&models.SubCategory{},
		&models.Service{},
		&models.MenuItem{},
		&models.Customer{},
		&models.HandyMan{},
		&models.Lead{},
		&models.BookedService{},
		&models.Notification{},
		&models.Feedback{},
		&models.ProviderAvailabilityWeekly{},
		&models.ProviderBlockedDate{},
	)
}

func main() {
	defer zap.L().Sync()

	bus := evbus.New()
	stage := services.NewMediaStage()

	uploader, err := storage.NewClient()
	if err != nil {
		zap.S().Fatalw("failed to build S3 client", "err", err)
	}

	pipeline := &services.Pipeline{
		Stage:        stage,
		Uploader:     uploader,
		Fetcher:      &services.HTTPFetcher{},
		Bus:          bus,
		OwnURLPrefix: uploader.BaseURL(),
	}

	cache := services.NewListCache(&services.GormListLoader{DB: config.DB})
	if err := cache.Subscribe(bus); err != nil {
		zap.S().Fatalw("failed to subscribe list cache", "err", err)
	}
	if err := cache.LoadLookups(); err != nil {
		zap.S().Warnw("category lookups not loaded at startup", "err", err)
	}

	notifier := services.NewNotifier(config.DB, bus)
	controllers.Init(bus, cache, notifier)

	scheduler := services.NewScheduler(config.DB, stage, notifier)
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Controllers{
		Services:  controllers.NewServiceController(pipeline, &services.GormServiceStore{DB: config.DB}, cache),
		MenuItems: controllers.NewMenuItemController(pipeline, &services.GormMenuItemStore{DB: config.DB}, cache),
		Media:     controllers.NewMediaController(stage),
		Profile:   controllers.NewProfileController(pipeline),
		Feedback:  controllers.NewFeedbackController(uploader),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
