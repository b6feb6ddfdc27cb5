package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port             string
	Origin           string
	Environment      string
	LogLevel         string
	JWTSecret        string
	JWTRefreshSecret string
	Database         DatabaseConfig
	Notify           NotifyConfig

	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int

	// ReminderInterval is the cadence of the background reminder sweep.
	ReminderInterval time.Duration
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// NotifyConfig holds credentials for the outbound notification channels.
// Every field is optional: a missing credential silently disables the
// corresponding provider rather than failing startup.
type NotifyConfig struct {
	// SMTP email transport
	SMTPHost  string
	SMTPPort  string
	EmailUser string
	EmailPass string
	EmailFrom string

	// Twilio (SMS + WhatsApp)
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	// Regional SMS vendors tried ahead of Twilio
	Fast2SMSAPIKey string
	MSG91AuthKey   string
	MSG91SenderID  string

	// Free-tier fallback
	TextbeltAPIKey string

	// Staff notification addresses
	AdminEmail      string
	SuperAdminEmail string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hmis"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	notifyConfig := NotifyConfig{
		SMTPHost:             getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:             getEnv("SMTP_PORT", "587"),
		EmailUser:            getEnv("EMAIL_USER", ""),
		EmailPass:            getEnv("EMAIL_PASS", ""),
		EmailFrom:            getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),
		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:    getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioWhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		Fast2SMSAPIKey:       getEnv("FAST2SMS_API_KEY", ""),
		MSG91AuthKey:         getEnv("MSG91_AUTH_KEY", ""),
		MSG91SenderID:        getEnv("MSG91_SENDER_ID", "HMIS"),
		TextbeltAPIKey:       getEnv("TEXTBELT_API_KEY", "textbelt"),
		AdminEmail:           getEnv("ADMIN_EMAIL", ""),
		SuperAdminEmail:      getEnv("SUPER_ADMIN_EMAIL", ""),
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	reminderMinutes, err := strconv.Atoi(getEnv("REMINDER_INTERVAL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL_MINUTES: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:3000"),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		Notify:                    notifyConfig,
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		ReminderInterval:          time.Duration(reminderMinutes) * time.Minute,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
