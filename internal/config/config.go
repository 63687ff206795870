package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL      string
	AdminSecret string
}

// Load reads configuration from a .env file (if present) and the environment.
// 8788 is the wrangler pages dev default, matching a locally served ledger.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:      getenv("SPARK_API_URL", "http://localhost:8788"),
		AdminSecret: os.Getenv("SPARK_ADMIN_SECRET"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
