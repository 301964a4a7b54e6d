package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Twilio WhatsApp channel
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppFrom   string
	TwilioDeliveryWait   time.Duration
	TwilioDeliveryPoll   time.Duration
	TwilioSendMaxRetries int

	// Dialogflow intent classifier
	DialogflowProjectID   string
	DialogflowLanguage    string
	DialogflowCredentials string

	// Google Calendar
	CalendarID          string
	CalendarCredentials string

	// Webhook origin filtering
	AllowedOrigins []string

	// Scheduling window
	Timezone        string
	DaysWindow      int
	SessionTTL      time.Duration
	RateLimitPerMin int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom:   getEnv("TWILIO_WHATSAPP_FROM", ""),
		TwilioDeliveryWait:   getEnvAsDuration("TWILIO_DELIVERY_WAIT", 15*time.Second),
		TwilioDeliveryPoll:   getEnvAsDuration("TWILIO_DELIVERY_POLL", 2*time.Second),
		TwilioSendMaxRetries: getEnvAsInt("TWILIO_SEND_MAX_RETRIES", 3),

		DialogflowProjectID:   getEnv("DIALOGFLOW_PROJECT_ID", ""),
		DialogflowLanguage:    getEnv("DIALOGFLOW_LANGUAGE", "pt-BR"),
		DialogflowCredentials: getEnv("DIALOGFLOW_KEYFILE", ""),

		CalendarID:          getEnv("GOOGLE_CALENDAR_ID", ""),
		CalendarCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", nil),

		Timezone:        getEnv("TIMEZONE", "America/Sao_Paulo"),
		DaysWindow:      getEnvAsInt("DAYS_WINDOW", 14),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RateLimitPerMin: getEnvAsInt("RATE_LIMIT_PER_MIN", 60),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
