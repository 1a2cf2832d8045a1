package advisor

import (
	"math"
	"testing"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/risk"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRouteDirectory struct{}

func (d *stubRouteDirectory) GetRoute(routeID string) *transit.Route {
	return &transit.Route{
		PrimaryIdentifier: routeID,
		Type:              transit.RouteTypeSubway,
	}
}

type stubStopDirectory struct{}

func (d *stubStopDirectory) GetStop(stopID string) *transit.Stop {
	return &transit.Stop{PrimaryIdentifier: stopID}
}

type stubAlertSource struct{}

func (s *stubAlertSource) ActiveAlerts(routeID string) []string {
	return nil
}

func testAdvisor(t *testing.T, fixedNow time.Time) (*Advisor, *estimator.Estimator, *reliability.Aggregator) {
	t.Helper()

	delayEstimator := estimator.NewEstimator(estimator.GetConfig())
	aggregator := reliability.NewAggregator(reliability.GetConfig())

	classifier := risk.NewClassifier(risk.GetConfig(), delayEstimator, aggregator, &stubRouteDirectory{}, &stubStopDirectory{}, &stubAlertSource{})

	testAdvisor := NewAdvisor(GetConfig(), classifier)
	testAdvisor.now = func() time.Time { return fixedNow }

	return testAdvisor, delayEstimator, aggregator
}

func TestAdviseReturnsExactlyThreeWindows(t *testing.T) {
	fixedNow := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	journeyAdvisor, _, _ := testAdvisor(t, fixedNow)

	advice, err := journeyAdvisor.Advise("place-pktrm", "place-harsq", "Red", 12)
	require.NoError(t, err)

	require.Len(t, advice.DepartureWindows, 3)

	assert.Equal(t, fixedNow, advice.DepartureWindows[0].DepartureTime)
	assert.Equal(t, fixedNow.Add(5*time.Minute), advice.DepartureWindows[1].DepartureTime)
	assert.Equal(t, fixedNow.Add(12*time.Minute), advice.DepartureWindows[2].DepartureTime)
}

func TestAdviseMonotonicConfidenceAndRisk(t *testing.T) {
	fixedNow := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	journeyAdvisor, delayEstimator, aggregator := testAdvisor(t, fixedNow)

	// heavy delays and an elevated live estimate
	for i := 0; i < 10; i++ {
		observation := &transit.ArrivalObservation{
			RouteID:      "Red",
			StopID:       "place-pktrm",
			ObservedAt:   fixedNow.Add(time.Duration(i) * time.Minute),
			DelaySeconds: 600,
		}
		aggregator.Record(observation)
		delayEstimator.Update(observation)
	}

	advice, err := journeyAdvisor.Advise("place-pktrm", "place-harsq", "Red", 12)
	require.NoError(t, err)

	windows := advice.DepartureWindows

	for index := 1; index < len(windows); index++ {
		assert.GreaterOrEqual(t, windows[index].Confidence, windows[index-1].Confidence)
		assert.LessOrEqual(t, windows[index].RiskLevel.Rank(), windows[index-1].RiskLevel.Rank())
		assert.False(t, windows[index].DepartureTime.Before(windows[index-1].DepartureTime))
	}

	assert.Equal(t, risk.RiskLevel(risk.RiskLevelHigh), windows[0].RiskLevel)
}

func TestAdviseLeaveNowIncludesPredictedDelay(t *testing.T) {
	fixedNow := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	journeyAdvisor, delayEstimator, _ := testAdvisor(t, fixedNow)

	delayEstimator.Update(&transit.ArrivalObservation{
		RouteID:      "Red",
		StopID:       "place-pktrm",
		ObservedAt:   fixedNow,
		DelaySeconds: 120,
	})

	advice, err := journeyAdvisor.Advise("place-pktrm", "place-harsq", "Red", 12)
	require.NoError(t, err)

	leaveNow := advice.DepartureWindows[0]
	assert.Equal(t, fixedNow.Add(12*time.Minute).Add(2*time.Minute), leaveNow.ExpectedArrivalTime)
	assert.Equal(t, 14.0, leaveNow.DurationMinutes)
}

func TestAdviseColdBucketsFallBackToDefaults(t *testing.T) {
	fixedNow := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	journeyAdvisor, _, _ := testAdvisor(t, fixedNow)

	advice, err := journeyAdvisor.Advise("place-pktrm", "place-harsq", "Red", 12)
	require.NoError(t, err)

	// no live estimate: arrival is journey time only
	leaveNow := advice.DepartureWindows[0]
	assert.Equal(t, fixedNow.Add(12*time.Minute), leaveNow.ExpectedArrivalTime)

	// subway default 0.75 -> confidence 0.5 + 0.5*0.75
	assert.InDelta(t, 0.875, leaveNow.Confidence, 1e-9)
}

func TestAdviseRejectsSameStop(t *testing.T) {
	fixedNow := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	journeyAdvisor, _, _ := testAdvisor(t, fixedNow)

	_, err := journeyAdvisor.Advise("place-pktrm", "place-pktrm", "Red", 12)
	assert.ErrorIs(t, err, ErrInvalidJourney)
}

func TestAdviseRejectsBadJourneyTimes(t *testing.T) {
	fixedNow := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	journeyAdvisor, _, _ := testAdvisor(t, fixedNow)

	for _, journeyTime := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := journeyAdvisor.Advise("place-pktrm", "place-harsq", "Red", journeyTime)
		assert.ErrorIs(t, err, ErrInvalidJourney)
	}
}
