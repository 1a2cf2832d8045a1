package risk

import (
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium           = "MEDIUM"
	RiskLevelHigh             = "HIGH"
)

// Rank orders risk bands LOW < MEDIUM < HIGH.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelMedium:
		return 1
	case RiskLevelHigh:
		return 2
	}

	return 0
}

// RiskAssessment is derived fresh per request, never stored.
type RiskAssessment struct {
	RouteID string `groups:"basic"`
	StopID  string `groups:"basic"`

	OverallRisk      RiskLevel `groups:"basic"`
	HistoricalOnTime float64   `groups:"basic"`

	PredictedDelaySeconds float64 `groups:"basic"`

	ActiveServiceAlerts []string `groups:"basic"`
	RiskFactors         []string `groups:"basic"`

	GeneratedAt time.Time `groups:"basic"`
}

// RouteDirectory and StopDirectory supply read-only identity lookups from
// the static schedule collaborator.
type RouteDirectory interface {
	GetRoute(routeID string) *transit.Route
}

type StopDirectory interface {
	GetStop(stopID string) *transit.Stop
}

// AlertSource supplies currently active service alert texts per route.
type AlertSource interface {
	ActiveAlerts(routeID string) []string
}

type compiledPredicate struct {
	name    string
	program *vm.Program
	message string
}

type Classifier struct {
	config Config

	estimator  *estimator.Estimator
	aggregator *reliability.Aggregator

	routes RouteDirectory
	stops  StopDirectory
	alerts AlertSource

	predicates []compiledPredicate

	now func() time.Time
}

type predicateEnv struct {
	RouteType      string  `expr:"routeType"`
	SurfaceRunning bool    `expr:"surfaceRunning"`
	TransferHub    bool    `expr:"transferHub"`
	Hour           int     `expr:"hour"`
	PeakHour       bool    `expr:"peakHour"`
	OnTime         float64 `expr:"onTime"`
}

func NewClassifier(config Config, delayEstimator *estimator.Estimator, aggregator *reliability.Aggregator, routes RouteDirectory, stops StopDirectory, alerts AlertSource) *Classifier {
	classifier := &Classifier{
		config: config,

		estimator:  delayEstimator,
		aggregator: aggregator,

		routes: routes,
		stops:  stops,
		alerts: alerts,

		now: time.Now,
	}

	for _, predicate := range config.FactorPredicates {
		program, err := expr.Compile(predicate.When, expr.Env(predicateEnv{}), expr.AsBool())
		if err != nil {
			log.Error().Err(err).Str("predicate", predicate.Name).Msg("Failed to compile risk factor predicate")
			continue
		}

		classifier.predicates = append(classifier.predicates, compiledPredicate{
			name:    predicate.Name,
			program: program,
			message: predicate.Message,
		})
	}

	return classifier
}

// Classify maps the bucket's historical reliability plus live signals to a
// risk band. A cold bucket falls back to the per-route-type default rate, so
// a brand new route-stop-hour combination still classifies instead of
// failing.
func (c *Classifier) Classify(routeID string, stopID string, key *transit.BucketKey) RiskAssessment {
	generatedAt := c.now()

	bucketKey := key
	if bucketKey == nil && stopID != "" {
		derived := transit.BucketKeyFor(routeID, stopID, generatedAt)
		bucketKey = &derived
	}

	route := c.routes.GetRoute(routeID)

	historicalOnTime := c.fallbackOnTime(route)
	if bucketKey != nil {
		stats, err := c.aggregator.ComputeStats(*bucketKey)
		if err == nil {
			historicalOnTime = stats.OnTimePercentage
		}
	}

	overallRisk := c.bandFor(historicalOnTime)

	var predictedDelay float64
	if bucketKey != nil {
		state, err := c.estimator.Predict(*bucketKey)
		if err == nil {
			predictedDelay = state.Value
		}
	}

	return RiskAssessment{
		RouteID: routeID,
		StopID:  stopID,

		OverallRisk:      overallRisk,
		HistoricalOnTime: historicalOnTime,

		PredictedDelaySeconds: predictedDelay,

		ActiveServiceAlerts: c.alerts.ActiveAlerts(routeID),
		RiskFactors:         c.riskFactors(route, stopID, predictedDelay, historicalOnTime, generatedAt),

		GeneratedAt: generatedAt,
	}
}

func (c *Classifier) bandFor(onTimePercentage float64) RiskLevel {
	if onTimePercentage < c.config.HighBelow {
		return RiskLevelHigh
	}
	if onTimePercentage < c.config.MediumBelow {
		return RiskLevelMedium
	}

	return RiskLevelLow
}

func (c *Classifier) fallbackOnTime(route *transit.Route) float64 {
	if route != nil {
		if rate, found := c.config.DefaultOnTimeByRouteType[route.Type]; found {
			return rate
		}
	}

	return c.config.DefaultOnTime
}

func (c *Classifier) isPeakHour(hour int) bool {
	for _, window := range c.config.PeakWindows {
		if hour >= window.StartHour && hour <= window.EndHour {
			return true
		}
	}

	return false
}

// riskFactors evaluates the configured predicates in fixed order so output
// is stable for identical inputs at the same instant.
func (c *Classifier) riskFactors(route *transit.Route, stopID string, predictedDelay float64, onTime float64, generatedAt time.Time) []string {
	localHour := generatedAt.In(transit.GetAgencyLocation()).Hour()

	environment := predicateEnv{
		Hour:     localHour,
		PeakHour: c.isPeakHour(localHour),
		OnTime:   onTime,
	}

	if route != nil {
		environment.RouteType = string(route.Type)
		environment.SurfaceRunning = route.SurfaceRunning
	}

	if stopID != "" {
		if stop := c.stops.GetStop(stopID); stop != nil {
			environment.TransferHub = stop.TransferHub
		}
	}

	factors := []string{}

	for _, predicate := range c.predicates {
		result, err := expr.Run(predicate.program, environment)
		if err != nil {
			log.Warn().Err(err).Str("predicate", predicate.name).Msg("Risk factor predicate failed")
			continue
		}

		if result.(bool) {
			factors = append(factors, predicate.message)
		}
	}

	if predictedDelay > c.config.ElevatedDelaySeconds {
		factors = append(factors, "Live delays currently elevated on this route")
	}

	return factors
}
