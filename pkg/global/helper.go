package global

import (
	"context"
	"os"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetMongoURI() string {
	return GetEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017")
}

func GetDatabaseName() string {
	return GetEnvOrDefault("MONGODB_DATABASE", "fashion")
}

func GetJWTSecret() string {
	return GetEnvOrDefault("JWT_SECRET", "dev-secret-change-me")
}
