package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"API_TIMEOUT", "ALLOWED_EMAIL_DOMAINS", "DOCUMENT_MAX_BYTES", "DOCUMENT_EXTENSIONS", "APP_ENV", "PHONE_MIN_DIGITS", "PHONE_MAX_DIGITS"} {
		unsetEnv(t, key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(5*1024*1024), cfg.Validation.DocumentMaxBytes)
	assert.Equal(t, []string{"gmail.com"}, cfg.Validation.AllowedEmailDomains)
	assert.Equal(t, []string{".jpg", ".jpeg"}, cfg.Validation.DocumentExtensions)
	assert.Equal(t, 7, cfg.Validation.PhoneMinDigits)
	assert.Equal(t, 15, cfg.Validation.PhoneMaxDigits)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.test/v1")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", " gmail.com , clinic.example ,, ")
	t.Setenv("DOCUMENT_REQUIRED", "true")
	t.Setenv("SUBMIT_TIMEOUT", "3s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PHONE_PATTERN", `^[0-9]+$`)
	t.Setenv("PHONE_MAX_DIGITS", "20")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test/v1", cfg.API.BaseURL)
	assert.Equal(t, []string{"gmail.com", "clinic.example"}, cfg.Validation.AllowedEmailDomains)
	assert.True(t, cfg.Validation.DocumentRequired)
	assert.Equal(t, 3*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, `^[0-9]+$`, cfg.Validation.PhonePattern)
	assert.Equal(t, 20, cfg.Validation.PhoneMaxDigits)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"API_TIMEOUT":        "soon",
		"NAME_MAX_LENGTH":    "lots",
		"DOCUMENT_REQUIRED":  "maybe",
		"DOCUMENT_MAX_BYTES": "5MB",
		"SESSION_TTL":        "forever",
		"PHONE_MAX_DIGITS":   "many",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.ErrorContains(t, err, key)
		})
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if prev, ok := os.LookupEnv(key); ok {
		t.Cleanup(func() { os.Setenv(key, prev) })
	}
	os.Unsetenv(key)
}
