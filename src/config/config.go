package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string
	PublicDir    string

	// Fiscal data operator (OFD) lookup settings.
	OFDBaseURL string
	OFDTimeout time.Duration

	// Optional TLS; both paths must be set to enable HTTPS.
	TLSCertPath string
	TLSKeyPath  string

	RateLimitInterval time.Duration
	RateLimitBurst    int

	ListingCacheTTL time.Duration

	CORSAllowedOrigin string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8081"),
		DatabasePath: getEnv("DATABASE_PATH", "./receiptcheck.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		PublicDir:    getEnv("PUBLIC_DIR", "./public"),

		OFDBaseURL: getEnv("OFD_BASE_URL", "https://consumer.1-ofd.ru"),
		OFDTimeout: getEnvAsDuration("OFD_TIMEOUT", 20*time.Second),

		TLSCertPath: getEnv("TLS_CERT_PATH", ""),
		TLSKeyPath:  getEnv("TLS_KEY_PATH", ""),

		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 100*time.Millisecond),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 30),

		ListingCacheTTL: getEnvAsDuration("LISTING_CACHE_TTL", 15*time.Minute),

		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	if Cfg.OFDBaseURL == "" {
		log.Fatalf("FATAL: OFD_BASE_URL must not be empty; the ticket lookup service is unreachable without it.")
	}
	if (Cfg.TLSCertPath == "") != (Cfg.TLSKeyPath == "") {
		log.Fatalf("FATAL: TLS_CERT_PATH and TLS_KEY_PATH must be set together to enable TLS.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, OFDBaseURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.OFDBaseURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
