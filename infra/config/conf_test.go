package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *AppConfig)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "9999", cfg.Port)
				assert.Equal(t, "http://localhost:9999", cfg.AppURL)
				assert.Equal(t, "phonepe", cfg.Gateway)
				assert.Equal(t, "mongo", cfg.StorageDriver)
				assert.Equal(t, 587, cfg.SMTPPort)
				assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
				assert.False(t, cfg.EnableLogging)
				assert.False(t, cfg.IsProduction())
				assert.False(t, cfg.TLSInsecureSkipVerify)
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"APP_PORT":                  "8080",
				"APP_URL":                   "https://events.example.com/",
				"RAZORPAY_KEY_SECRET":       "rzp_secret",
				"GATEWAY":                   "stripe",
				"STORAGE_DRIVER":            "sqlite",
				"SMTP_PORT":                 "2525",
				"ENABLE_OPENSEARCH_LOGGING": "true",
				"ENVIRONMENT":               "production",
				"GATEWAY_TIMEOUT_SECONDS":   "5",
				"TLS_INSECURE_SKIP_VERIFY":  "true",
			},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "8080", cfg.Port)
				assert.Equal(t, "https://events.example.com", cfg.AppURL, "trailing slash is trimmed")
				assert.Equal(t, "rzp_secret", cfg.RazorpayKeySecret)
				assert.Equal(t, "stripe", cfg.Gateway)
				assert.Equal(t, "sqlite", cfg.StorageDriver)
				assert.Equal(t, 2525, cfg.SMTPPort)
				assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
				assert.True(t, cfg.EnableLogging)
				assert.True(t, cfg.IsProduction())
				assert.True(t, cfg.TLSInsecureSkipVerify)
			},
		},
		{
			name: "invalid numbers fall back to defaults",
			envVars: map[string]string{
				"SMTP_PORT":                 "not-a-number",
				"ENABLE_OPENSEARCH_LOGGING": "maybe",
			},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, 587, cfg.SMTPPort)
				assert.False(t, cfg.EnableLogging)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}
			ResetAppConfig()
			defer ResetAppConfig()

			cfg := GetAppConfig()
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestGetAppConfig_Singleton(t *testing.T) {
	ResetAppConfig()
	defer ResetAppConfig()

	assert.Same(t, GetAppConfig(), GetAppConfig())
}

func TestAppConfig_PostgresDSN(t *testing.T) {
	cfg := &AppConfig{
		DBHost: "db",
		DBPort: "5432",
		DBUser: "app",
		DBPass: "secret",
		DBName: "eventpay",
		DBZone: "UTC",
	}

	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=eventpay sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("EVENTPAY_TEST_STRING", "value")
	t.Setenv("EVENTPAY_TEST_BOOL", "true")
	t.Setenv("EVENTPAY_TEST_INT", "42")

	assert.Equal(t, "value", GetEnv("EVENTPAY_TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnv("EVENTPAY_TEST_MISSING", "default"))
	assert.True(t, GetBoolEnv("EVENTPAY_TEST_BOOL", false))
	assert.Equal(t, 42, GetIntEnv("EVENTPAY_TEST_INT", 0))
	assert.Equal(t, 7, GetIntEnv("EVENTPAY_TEST_MISSING", 7))
}
