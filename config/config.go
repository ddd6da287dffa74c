package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the database connection. MySQL by default; set DB_DRIVER=sqlite
// for a local file database.
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if getEnv("DB_DRIVER", "mysql") == "sqlite" {
		return gorm.Open(sqlite.Open(getEnv("DB_PATH", "seblak_delivery.db")), cfg)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getEnv("DB_USER", "root"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_PORT", "3306"),
		getEnv("DB_NAME", "seblak_delivery"),
	)
	return gorm.Open(mysql.Open(dsn), cfg)
}

// RedisURL returns the Redis connection string used for the OTP store.
func RedisURL() string {
	return getEnv("REDIS_URL", "redis://localhost:6379")
}
