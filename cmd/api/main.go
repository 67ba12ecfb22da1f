package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dineops/attendance-backend-go/internal/config"
	appHTTP "github.com/dineops/attendance-backend-go/internal/handler/http"
	"github.com/dineops/attendance-backend-go/internal/pkg/cron"
	"github.com/dineops/attendance-backend-go/internal/pkg/database"
	"github.com/dineops/attendance-backend-go/internal/pkg/jwt"
	"github.com/dineops/attendance-backend-go/internal/pkg/storage"
	"github.com/dineops/attendance-backend-go/internal/repository/postgresql"
	shiftService "github.com/dineops/attendance-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	shiftRepo := postgresql.NewShiftRepository(db)
	userRepo := postgresql.NewUserRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	var blobStorage storage.BlobStorage
	switch cfg.Storage.Type {
	case "local":
		blobStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	shiftSvc := shiftService.NewShiftService(shiftRepo, userRepo, blobStorage, cfg.Policy)

	shiftHandler := appHTTP.NewShiftHandler(shiftSvc)

	scheduler := cron.NewScheduler()
	retentionJobs := cron.NewRetentionJobs(shiftRepo, blobStorage, cfg.Policy.PhotoRetentionDays)
	retentionJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		shiftHandler,
		cfg.Storage.BasePath,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
