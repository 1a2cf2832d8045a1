package reliability

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// An arrival counts as on-time when |delay| is within this threshold
	OnTimeThresholdSeconds int `yaml:"ontime_threshold_seconds"`

	// Trailing retention window per bucket, anchored to the newest
	// observation in that bucket
	WindowDuration time.Duration `yaml:"window_duration"`
}

var defaultConfig = Config{
	OnTimeThresholdSeconds: 120,
	WindowDuration:         30 * 24 * time.Hour,
}

// GetConfig returns the aggregator configuration from environment variables
// or defaults
func GetConfig() Config {
	config := defaultConfig

	if val := os.Getenv("COMMUTE_GUARDIAN_ONTIME_THRESHOLD_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			config.OnTimeThresholdSeconds = parsed
		}
	}

	if val := os.Getenv("COMMUTE_GUARDIAN_RELIABILITY_WINDOW"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			config.WindowDuration = parsed
		}
	}

	return config
}
