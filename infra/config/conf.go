package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Port        string
	AppURL      string
	Environment string

	// Razorpay client-side checkout
	RazorpayKeySecret string

	// Gateway used by the status reconciler: phonepe or stripe
	Gateway              string
	PhonePeClientID      string
	PhonePeClientSecret  string
	PhonePeClientVersion string
	PhonePeEnv           string
	StripeSecretKey      string
	GatewayTimeout       time.Duration

	// Storage: mongo, sqlite, postgres or memory
	StorageDriver string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPass        string
	DBName        string
	DBZone        string

	// Mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool
	LoggingLevel   string

	RateLimitPerMinute int
	IPWhitelist        string

	// TLSInsecureSkipVerify disables certificate checks for outbound
	// gateway and OpenSearch calls. Local testing only.
	TLSInsecureSkipVerify bool
}

var appConfigInstance *AppConfig

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	if appConfigInstance == nil {
		appConfigInstance = &AppConfig{
			Port:        GetEnv("APP_PORT", "9999"),
			AppURL:      strings.TrimSuffix(GetEnv("APP_URL", "http://localhost:9999"), "/"),
			Environment: GetEnv("ENVIRONMENT", "development"),

			RazorpayKeySecret: GetEnv("RAZORPAY_KEY_SECRET", ""),

			Gateway:              GetEnv("GATEWAY", "phonepe"),
			PhonePeClientID:      GetEnv("PHONEPE_CLIENT_ID", ""),
			PhonePeClientSecret:  GetEnv("PHONEPE_CLIENT_SECRET", ""),
			PhonePeClientVersion: GetEnv("PHONEPE_CLIENT_VERSION", "1"),
			PhonePeEnv:           GetEnv("PHONEPE_ENV", "sandbox"),
			StripeSecretKey:      GetEnv("STRIPE_SECRET_KEY", ""),
			GatewayTimeout:       time.Duration(GetIntEnv("GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second,

			StorageDriver: GetEnv("STORAGE_DRIVER", "mongo"),
			MongoURI:      GetEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: GetEnv("MONGO_DATABASE", "eventpay"),
			SQLitePath:    GetEnv("SQLITE_PATH", "./data/eventpay.db"),
			DBHost:        GetEnv("DB_HOST", "localhost"),
			DBPort:        GetEnv("DB_PORT", "5432"),
			DBUser:        GetEnv("DB_USER", "postgres"),
			DBPass:        GetEnv("DB_PASS", ""),
			DBName:        GetEnv("DB_NAME", "eventpay"),
			DBZone:        GetEnv("DB_ZONE", "UTC"),

			SMTPHost: GetEnv("SMTP_HOST", ""),
			SMTPPort: GetIntEnv("SMTP_PORT", 587),
			SMTPUser: GetEnv("SMTP_USER", ""),
			SMTPPass: GetEnv("SMTP_PASS", ""),
			MailFrom: GetEnv("MAIL_FROM", "no-reply@localhost"),

			OpenSearchURL:  GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser: GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass: GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:  GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
			LoggingLevel:   GetEnv("LOGGING_LEVEL", "info"),

			RateLimitPerMinute: GetIntEnv("RATE_LIMIT_PER_MINUTE", 100),
			IPWhitelist:        GetEnv("IP_WHITELIST", ""),

			TLSInsecureSkipVerify: GetBoolEnv("TLS_INSECURE_SKIP_VERIFY", false),
		}
	}
	return appConfigInstance
}

// ResetAppConfig drops the cached configuration so the next GetAppConfig call re-reads the environment
func ResetAppConfig() {
	appConfigInstance = nil
}

// PostgresDSN builds the lib/pq connection string from the DB_* variables
func (c *AppConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName, c.DBZone)
}

// IsProduction reports whether the service runs against production gateways
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
