package advisor

import (
	"os"

	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
)

type Config struct {
	// ISO 8601 wait offsets for the second and third departure windows
	ShortWait string `yaml:"short_wait"`
	CycleWait string `yaml:"cycle_wait"`

	// Confidence head-room added per window of extra waiting
	ConfidenceStep float64 `yaml:"confidence_step"`

	// Live EWMA prediction above this counts as a delay spike worth
	// waiting out
	ElevatedDelaySeconds float64 `yaml:"elevated_delay_seconds"`
}

var defaultConfig = Config{
	ShortWait: "PT5M",
	CycleWait: "PT12M",

	ConfidenceStep: 0.05,

	ElevatedDelaySeconds: 300,
}

// GetConfig returns the advisor configuration from environment variables or
// defaults
func GetConfig() Config {
	config := defaultConfig

	if val := os.Getenv("COMMUTE_GUARDIAN_ADVISOR_SHORT_WAIT"); val != "" {
		config.ShortWait = val
	}

	if val := os.Getenv("COMMUTE_GUARDIAN_ADVISOR_CYCLE_WAIT"); val != "" {
		config.CycleWait = val
	}

	return config
}

func (c Config) parseWait(value string, fallback string) iso8601.Duration {
	wait, err := iso8601.ParseISO8601(value)
	if err != nil {
		log.Error().Err(err).Str("wait", value).Msg("Failed to parse advisor wait offset")
		wait, _ = iso8601.ParseISO8601(fallback)
	}

	return wait
}

func (c Config) shortWait() iso8601.Duration {
	return c.parseWait(c.ShortWait, defaultConfig.ShortWait)
}

func (c Config) cycleWait() iso8601.Duration {
	return c.parseWait(c.CycleWait, defaultConfig.CycleWait)
}
