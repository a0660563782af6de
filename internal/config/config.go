package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	AdminAPIKey string

	OTLPEndpoint string

	CORSAllowedOrigins []string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	SeedDemoCampaign bool

	Redis RedisConfig

	Gateway GatewayConfig

	RateLimit RateLimitConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// GatewayConfig selects and configures the payment gateway used for new intents.
type GatewayConfig struct {
	Provider string

	MidtransServerKey  string
	MidtransProduction bool
	MidtransBaseURL    string

	SandboxServerKey string
}

type RateLimitConfig struct {
	DonationIntentRate  float64
	DonationIntentBurst int
	DonationIntentLimit int
	WindowSeconds       int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:            getenv("APP_SERVICE", "charity"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        environment,
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		AdminAPIKey:        strings.TrimSpace(getenv("ADMIN_API_KEY", "")),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "charity"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:      getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:      getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime:  getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:  getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBAutoMigrate:      getenvBool("DATABASE_AUTO_MIGRATE", true),
		SeedDemoCampaign:   getenvBool("SEED_DEMO_CAMPAIGN", environment != "production"),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Gateway: GatewayConfig{
			Provider:           strings.ToLower(strings.TrimSpace(getenv("PAYMENT_GATEWAY", "midtrans"))),
			MidtransServerKey:  strings.TrimSpace(getenv("MIDTRANS_SERVER_KEY", "")),
			MidtransProduction: getenvBool("MIDTRANS_IS_PRODUCTION", environment == "production"),
			MidtransBaseURL:    strings.TrimSpace(getenv("MIDTRANS_BASE_URL", "")),
			SandboxServerKey:   strings.TrimSpace(getenv("SANDBOX_SERVER_KEY", "sandbox-server-key")),
		},
		RateLimit: RateLimitConfig{
			DonationIntentRate:  getenvFloat("RATE_LIMIT_DONATION_INTENT_RATE", 0.2),
			DonationIntentBurst: getenvInt("RATE_LIMIT_DONATION_INTENT_BURST", 5),
			DonationIntentLimit: getenvInt("RATE_LIMIT_DONATION_INTENT_LIMIT", 10),
			WindowSeconds:       getenvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
