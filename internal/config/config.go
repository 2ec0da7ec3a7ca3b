// Package config loads environment configuration for miroview.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/miroview/miroview/internal/client"
	"github.com/miroview/miroview/internal/decode"
	"github.com/miroview/miroview/internal/overlay"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL         = "ws://127.0.0.1:8888"
	defaultAPIBaseURL        = "http://127.0.0.1:8888"
	defaultTransport         = string(decode.ModeJSON)
	defaultQuality           = "high"
	defaultReconnectBaseMs   = 1000
	defaultReconnectMult     = 2.0
	defaultReconnectMaxMs    = 30000
	defaultReconnectAttempts = 5
	defaultDialTimeoutMs     = 10000
	defaultSwipeSteps        = 10
	defaultSwipeDurationMs   = 300
	defaultMetricsAddr       = ""
)

// Config holds runtime configuration values.
type Config struct {
	ServerURL     string
	APIBaseURL    string
	Transport     decode.Mode
	Quality       string
	Reconnect     client.ReconnectPolicy
	DialTimeout   time.Duration
	SwipeSteps    int
	SwipeDuration time.Duration
	MetricsAddr   string
	OverlayPreset string
}

// Load reads configuration from ./.env and environment variables.
func Load() (Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServerURL:   envString("SERVER_URL", defaultServerURL),
		APIBaseURL:  envString("API_BASE_URL", defaultAPIBaseURL),
		Quality:     envString("QUALITY", defaultQuality),
		MetricsAddr: envString("METRICS_ADDR", defaultMetricsAddr),
	}

	mode, err := decode.ParseMode(envString("TRANSPORT", defaultTransport))
	if err != nil {
		return Config{}, fmt.Errorf("TRANSPORT: %w", err)
	}
	cfg.Transport = mode

	baseMs, err := envInt("RECONNECT_BASE_MS", defaultReconnectBaseMs)
	if err != nil {
		return Config{}, err
	}
	if baseMs <= 0 {
		return Config{}, errors.New("RECONNECT_BASE_MS must be > 0")
	}

	mult, err := envFloat("RECONNECT_MULTIPLIER", defaultReconnectMult)
	if err != nil {
		return Config{}, err
	}
	if mult < 1 {
		return Config{}, errors.New("RECONNECT_MULTIPLIER must be >= 1")
	}

	maxMs, err := envInt("RECONNECT_MAX_MS", defaultReconnectMaxMs)
	if err != nil {
		return Config{}, err
	}
	if maxMs < baseMs {
		return Config{}, errors.New("RECONNECT_MAX_MS must be >= RECONNECT_BASE_MS")
	}

	attempts, err := envInt("RECONNECT_MAX_ATTEMPTS", defaultReconnectAttempts)
	if err != nil {
		return Config{}, err
	}
	if attempts < 0 {
		return Config{}, errors.New("RECONNECT_MAX_ATTEMPTS must be >= 0")
	}

	cfg.Reconnect = client.ReconnectPolicy{
		BaseDelay:   time.Duration(baseMs) * time.Millisecond,
		Multiplier:  mult,
		MaxDelay:    time.Duration(maxMs) * time.Millisecond,
		MaxAttempts: attempts,
	}

	dialMs, err := envInt("DIAL_TIMEOUT_MS", defaultDialTimeoutMs)
	if err != nil {
		return Config{}, err
	}
	if dialMs <= 0 {
		return Config{}, errors.New("DIAL_TIMEOUT_MS must be > 0")
	}
	cfg.DialTimeout = time.Duration(dialMs) * time.Millisecond

	swipeSteps, err := envInt("SWIPE_STEPS", defaultSwipeSteps)
	if err != nil {
		return Config{}, err
	}
	if swipeSteps <= 0 {
		return Config{}, errors.New("SWIPE_STEPS must be > 0")
	}
	cfg.SwipeSteps = swipeSteps

	swipeMs, err := envInt("SWIPE_DURATION_MS", defaultSwipeDurationMs)
	if err != nil {
		return Config{}, err
	}
	if swipeMs <= 0 {
		return Config{}, errors.New("SWIPE_DURATION_MS must be > 0")
	}
	cfg.SwipeDuration = time.Duration(swipeMs) * time.Millisecond

	cfg.OverlayPreset = envString("OVERLAY_PRESET", "")

	return cfg, nil
}

// LoadOverlayPreset reads an overlay filter preset from a YAML file. An empty
// path returns the defaults.
func LoadOverlayPreset(path string) (overlay.Filters, error) {
	if path == "" {
		return overlay.DefaultFilters(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return overlay.Filters{}, fmt.Errorf("overlay preset: %w", err)
	}
	f := overlay.DefaultFilters()
	if err := yaml.Unmarshal(data, &f); err != nil {
		return overlay.Filters{}, fmt.Errorf("overlay preset %s: %w", path, err)
	}
	return f, nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envFloat returns a float env override when present, otherwise a default.
func envFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(value, `"'`)
	return key, value, true
}
