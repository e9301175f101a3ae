package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the dashboard and the development API
type Config struct {
	Port          string
	Origin        string
	Environment   string
	API           APIConfig
	Validation    ValidationConfig
	MockAPI       MockAPIConfig
	SubmitTimeout time.Duration
	SessionTTL    time.Duration
}

// APIConfig holds the patient backend connection details
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ValidationConfig holds the add-patient form constraints
type ValidationConfig struct {
	AllowedEmailDomains []string
	PhonePattern        string
	PhoneMinDigits      int
	PhoneMaxDigits      int
	NamePattern         string
	NameMaxLength       int
	DocumentRequired    bool
	DocumentMaxBytes    int64
	DocumentExtensions  []string
	DocumentMIMETypes   []string
}

// MockAPIConfig holds settings for the local stand-in of the patient backend
type MockAPIConfig struct {
	Port string
	DSN  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	submitTimeout, err := time.ParseDuration(getEnv("SUBMIT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_TIMEOUT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	nameMaxLength, err := strconv.Atoi(getEnv("NAME_MAX_LENGTH", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid NAME_MAX_LENGTH: %w", err)
	}

	phoneMinDigits, err := strconv.Atoi(getEnv("PHONE_MIN_DIGITS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHONE_MIN_DIGITS: %w", err)
	}

	phoneMaxDigits, err := strconv.Atoi(getEnv("PHONE_MAX_DIGITS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHONE_MAX_DIGITS: %w", err)
	}

	documentRequired, err := strconv.ParseBool(getEnv("DOCUMENT_REQUIRED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOCUMENT_REQUIRED: %w", err)
	}

	documentMaxBytes, err := strconv.ParseInt(getEnv("DOCUMENT_MAX_BYTES", "5242880"), 10, 64) // 5 MiB
	if err != nil {
		return nil, fmt.Errorf("invalid DOCUMENT_MAX_BYTES: %w", err)
	}

	validation := ValidationConfig{
		AllowedEmailDomains: getEnvList("ALLOWED_EMAIL_DOMAINS", "gmail.com"),
		PhonePattern:        getEnv("PHONE_PATTERN", ""),
		PhoneMinDigits:      phoneMinDigits,
		PhoneMaxDigits:      phoneMaxDigits,
		NamePattern:         getEnv("NAME_PATTERN", ""),
		NameMaxLength:       nameMaxLength,
		DocumentRequired:    documentRequired,
		DocumentMaxBytes:    documentMaxBytes,
		DocumentExtensions:  getEnvList("DOCUMENT_EXTENSIONS", ".jpg,.jpeg"),
		DocumentMIMETypes:   getEnvList("DOCUMENT_MIME_TYPES", "image/jpeg"),
	}

	return &Config{
		Port:        getEnv("PORT", "3000"),
		Origin:      getEnv("ORIGIN", "http://localhost:3000"),
		Environment: getEnv("APP_ENV", "development"),
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:3001"),
			Timeout: apiTimeout,
		},
		Validation: validation,
		MockAPI: MockAPIConfig{
			Port: getEnv("MOCK_API_PORT", "3001"),
			DSN:  getEnv("MOCK_API_DSN", ""),
		},
		SubmitTimeout: submitTimeout,
		SessionTTL:    sessionTTL,
	}, nil
}

// IsDevelopment reports whether the app runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
