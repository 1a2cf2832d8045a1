package risk

import (
	"testing"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRouteDirectory struct {
	routes map[string]*transit.Route
}

func (d *stubRouteDirectory) GetRoute(routeID string) *transit.Route {
	return d.routes[routeID]
}

type stubStopDirectory struct {
	stops map[string]*transit.Stop
}

func (d *stubStopDirectory) GetStop(stopID string) *transit.Stop {
	return d.stops[stopID]
}

type stubAlertSource struct {
	alerts map[string][]string
}

func (s *stubAlertSource) ActiveAlerts(routeID string) []string {
	return s.alerts[routeID]
}

func testClassifier(t *testing.T) (*Classifier, *estimator.Estimator, *reliability.Aggregator) {
	t.Helper()

	delayEstimator := estimator.NewEstimator(estimator.GetConfig())
	aggregator := reliability.NewAggregator(reliability.GetConfig())

	routes := &stubRouteDirectory{routes: map[string]*transit.Route{
		"Red": {
			PrimaryIdentifier: "Red",
			Type:              transit.RouteTypeSubway,
		},
		"Green-B": {
			PrimaryIdentifier: "Green-B",
			Type:              transit.RouteTypeLightRail,
			SurfaceRunning:    true,
		},
	}}

	stops := &stubStopDirectory{stops: map[string]*transit.Stop{
		"place-pktrm": {
			PrimaryIdentifier: "place-pktrm",
			PrimaryName:       "Park Street",
			TransferHub:       true,
		},
		"place-harsq": {
			PrimaryIdentifier: "place-harsq",
			PrimaryName:       "Harvard",
		},
	}}

	alerts := &stubAlertSource{alerts: map[string][]string{
		"Green-B": {"Minor delays due to traffic signal priority"},
	}}

	classifier := NewClassifier(GetConfig(), delayEstimator, aggregator, routes, stops, alerts)

	return classifier, delayEstimator, aggregator
}

func recordWithOnTimeRatio(aggregator *reliability.Aggregator, observedAt time.Time, onTime int, late int) {
	for i := 0; i < onTime; i++ {
		aggregator.Record(&transit.ArrivalObservation{
			RouteID:      "Red",
			StopID:       "place-pktrm",
			ObservedAt:   observedAt.Add(time.Duration(i) * time.Minute),
			DelaySeconds: 0,
		})
	}
	for i := 0; i < late; i++ {
		aggregator.Record(&transit.ArrivalObservation{
			RouteID:      "Red",
			StopID:       "place-pktrm",
			ObservedAt:   observedAt.Add(time.Duration(onTime+i) * time.Minute),
			DelaySeconds: 600,
		})
	}
}

func TestBandBoundaries(t *testing.T) {
	classifier, _, _ := testClassifier(t)

	// strict less-than at both boundaries
	assert.Equal(t, RiskLevel(RiskLevelHigh), classifier.bandFor(0.59))
	assert.Equal(t, RiskLevel(RiskLevelMedium), classifier.bandFor(0.60))
	assert.Equal(t, RiskLevel(RiskLevelMedium), classifier.bandFor(0.79))
	assert.Equal(t, RiskLevel(RiskLevelLow), classifier.bandFor(0.80))
}

func TestClassifyUsesWindowStats(t *testing.T) {
	classifier, _, aggregator := testClassifier(t)

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	recordWithOnTimeRatio(aggregator, observedAt, 5, 5)

	key := transit.BucketKeyFor("Red", "place-pktrm", observedAt)
	assessment := classifier.Classify("Red", "place-pktrm", &key)

	assert.Equal(t, RiskLevel(RiskLevelHigh), assessment.OverallRisk)
	assert.Equal(t, 0.5, assessment.HistoricalOnTime)
}

func TestClassifyColdBucketFallsBackToRouteTypeDefault(t *testing.T) {
	classifier, _, _ := testClassifier(t)

	key, err := transit.NewBucketKey("Red", "place-harsq", 3, "SUN")
	require.NoError(t, err)

	assessment := classifier.Classify("Red", "place-harsq", &key)

	// subway default 0.75 -> MEDIUM, never a meaningless zero
	assert.Equal(t, 0.75, assessment.HistoricalOnTime)
	assert.Equal(t, RiskLevel(RiskLevelMedium), assessment.OverallRisk)
}

func TestRiskFactorsDeterministicOrder(t *testing.T) {
	classifier, _, _ := testClassifier(t)
	classifier.now = func() time.Time {
		return time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	}

	assessment := classifier.Classify("Green-B", "place-pktrm", nil)

	assert.Equal(t, []string{
		"Surface running with traffic signals",
		"Major transfer station - potential crowding",
		"Peak commuting hours - increased delays possible",
	}, assessment.RiskFactors)

	repeat := classifier.Classify("Green-B", "place-pktrm", nil)
	assert.Equal(t, assessment.RiskFactors, repeat.RiskFactors)
}

func TestRiskFactorsOffPeakQuietStop(t *testing.T) {
	classifier, _, _ := testClassifier(t)
	classifier.now = func() time.Time {
		return time.Date(2024, 3, 4, 11, 0, 0, 0, transit.GetAgencyLocation())
	}

	assessment := classifier.Classify("Red", "place-harsq", nil)

	assert.Empty(t, assessment.RiskFactors)
}

func TestAlertPassthrough(t *testing.T) {
	classifier, _, _ := testClassifier(t)

	assessment := classifier.Classify("Green-B", "", nil)

	assert.Equal(t, []string{"Minor delays due to traffic signal priority"}, assessment.ActiveServiceAlerts)
}

func TestElevatedLiveDelayFactor(t *testing.T) {
	classifier, delayEstimator, _ := testClassifier(t)

	observedAt := time.Date(2024, 3, 4, 11, 0, 0, 0, transit.GetAgencyLocation())
	classifier.now = func() time.Time { return observedAt }

	delayEstimator.Update(&transit.ArrivalObservation{
		RouteID:      "Red",
		StopID:       "place-pktrm",
		ObservedAt:   observedAt,
		DelaySeconds: 600,
	})

	assessment := classifier.Classify("Red", "place-pktrm", nil)

	assert.Equal(t, float64(600), assessment.PredictedDelaySeconds)
	assert.Contains(t, assessment.RiskFactors, "Live delays currently elevated on this route")
}
