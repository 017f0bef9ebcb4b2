package config

import (
	"log"
	"os"
	"strconv"

	"blocks-cms/internal/domain/schema"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string

	LOG_LEVEL        string
	DEFAULT_LANGUAGE string
	CATALOG_PATH     string
	DB_DEBUG         bool
)

// LoadEnv reads .env (if any) and the process environment. The server needs
// the full set; tools call LoadBase and read DB_URL themselves.
func LoadEnv() {
	LoadBase()
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
}

// LoadBase reads the settings every binary shares.
func LoadBase() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = getEnv("DB_URL", "")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "*")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	CATALOG_PATH = getEnv("CATALOG_PATH", "")
	DB_DEBUG = getBool("DB_DEBUG", false)

	DEFAULT_LANGUAGE = getEnv("DEFAULT_LANGUAGE", "en")
	if !schema.ValidLanguageCode(DEFAULT_LANGUAGE) {
		log.Fatalf("DEFAULT_LANGUAGE %q is not a valid language code", DEFAULT_LANGUAGE)
	}
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: not a boolean", key, v)
		return fallback
	}
	return b
}
