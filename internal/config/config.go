package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	ServiceURL      string
	HTTPTimeout     time.Duration
	OperatorPIN     string
	JWTIssuer       string
	JWTSigningKey   string
	AccessTTL       time.Duration
	PhotoLibraryDir string
	CameraCommand   string
	PhotoMaxDim     int
	RateLimitPerMin int
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		ServiceURL:      getEnv("SERVICE_URL", "http://localhost:8000"),
		HTTPTimeout:     durationEnv("HTTP_TIMEOUT", 30*time.Second),
		OperatorPIN:     getEnv("OPERATOR_PIN", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "rollcall"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:       durationEnv("ACCESS_TTL", 12*time.Hour),
		PhotoLibraryDir: getEnv("PHOTO_LIBRARY_DIR", "photos"),
		CameraCommand:   getEnv("CAMERA_COMMAND", ""),
		PhotoMaxDim:     intEnv("PHOTO_MAX_DIM", 1600),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
