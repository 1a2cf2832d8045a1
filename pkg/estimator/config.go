package estimator

import (
	"os"
	"strconv"
)

type Config struct {
	// Smoothing factor applied at bucket creation, 0 < alpha <= 1
	Alpha float64 `yaml:"alpha"`
}

var defaultConfig = Config{
	Alpha: 0.3,
}

// GetConfig returns the estimator configuration from environment variables
// or defaults
func GetConfig() Config {
	config := defaultConfig

	if val := os.Getenv("COMMUTE_GUARDIAN_EWMA_ALPHA"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed > 0 && parsed <= 1 {
			config.Alpha = parsed
		}
	}

	return config
}
