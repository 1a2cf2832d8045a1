package risk

import (
	"os"

	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FactorPredicate is a configurable boolean rule evaluated against the
// journey context. When the expression is true its message is appended to
// the risk factors, in config order.
type FactorPredicate struct {
	Name    string `yaml:"name"`
	When    string `yaml:"when"`
	Message string `yaml:"message"`
}

type PeakWindow struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

type Config struct {
	// Classification boundaries, strict less-than, first match wins
	HighBelow   float64 `yaml:"high_below"`
	MediumBelow float64 `yaml:"medium_below"`

	// Fallback historical on-time rate per route type for cold buckets
	DefaultOnTimeByRouteType map[transit.RouteType]float64 `yaml:"default_ontime_by_route_type"`
	DefaultOnTime            float64                       `yaml:"default_ontime"`

	// Live EWMA prediction above this marks the route as currently delayed
	ElevatedDelaySeconds float64 `yaml:"elevated_delay_seconds"`

	PeakWindows []PeakWindow `yaml:"peak_windows"`

	FactorPredicates []FactorPredicate `yaml:"factor_predicates"`
}

var defaultConfig = Config{
	HighBelow:   0.60,
	MediumBelow: 0.80,

	DefaultOnTimeByRouteType: map[transit.RouteType]float64{
		transit.RouteTypeSubway:    0.75,
		transit.RouteTypeLightRail: 0.65,
		transit.RouteTypeBus:       0.70,
		transit.RouteTypeRail:      0.80,
		transit.RouteTypeFerry:     0.85,
	},
	DefaultOnTime: 0.75,

	ElevatedDelaySeconds: 300,

	PeakWindows: []PeakWindow{
		{StartHour: 7, EndHour: 9},
		{StartHour: 17, EndHour: 19},
	},

	FactorPredicates: []FactorPredicate{
		{
			Name:    "surface-running",
			When:    "surfaceRunning",
			Message: "Surface running with traffic signals",
		},
		{
			Name:    "transfer-hub",
			When:    "transferHub",
			Message: "Major transfer station - potential crowding",
		},
		{
			Name:    "peak-hours",
			When:    "peakHour",
			Message: "Peak commuting hours - increased delays possible",
		},
	},
}

// GetConfig returns the classifier configuration, optionally overridden by a
// YAML file pointed at by COMMUTE_GUARDIAN_RISK_CONFIG
func GetConfig() Config {
	config := defaultConfig

	if path := os.Getenv("COMMUTE_GUARDIAN_RISK_CONFIG"); path != "" {
		fileBytes, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to read risk config")
			return config
		}

		if err := yaml.Unmarshal(fileBytes, &config); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to parse risk config")
			return defaultConfig
		}
	}

	return config
}
