package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/config"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/router"
	"github.com/seblak-delivery/api/services"
	"github.com/seblak-delivery/api/utils"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	otp, err := services.NewOTPService(config.RedisURL())
	if err != nil {
		utils.ErrorLogger.Printf("OTP service disabled: %v", err)
		otp = nil
	}

	hub := realtime.NewHub()
	r := router.SetupRouter(db, hub, otp)

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.SpiceLevelOption{},
		&models.Topping{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemTopping{},
		&models.OrderStatusRecord{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Migration failed: %v", err)
	}
}
