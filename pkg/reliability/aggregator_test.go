package reliability

import (
	"fmt"
	"testing"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testObservation(delaySeconds int, observedAt time.Time, tripID string, directionID int) *transit.ArrivalObservation {
	return &transit.ArrivalObservation{
		RouteID:              "Red",
		StopID:               "place-pktrm",
		TripID:               tripID,
		DirectionID:          directionID,
		ObservedAt:           observedAt,
		DelaySeconds:         delaySeconds,
		ScheduleRelationship: transit.ScheduleRelationshipScheduled,
	}
}

func TestComputeStatsEmptyBucket(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	key, err := transit.NewBucketKey("Red", "place-pktrm", 8, "MON")
	require.NoError(t, err)

	_, err = testAggregator.ComputeStats(key)
	assert.ErrorIs(t, err, ErrWindowEmpty)
}

func TestOnTimePercentageAllOnTime(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	for i := 0; i < 10; i++ {
		testAggregator.Record(testObservation(0, observedAt.Add(time.Duration(i)*time.Minute), "", 0))
	}

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	assert.Equal(t, 10, stats.SampleCount)
	assert.Equal(t, 1.0, stats.OnTimePercentage)
}

func TestOnTimePercentageAllLate(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	for i := 0; i < 10; i++ {
		testAggregator.Record(testObservation(300, observedAt.Add(time.Duration(i)*time.Minute), "", 0))
	}

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	assert.Equal(t, 0.0, stats.OnTimePercentage)
}

func TestOnTimeThresholdBoundary(t *testing.T) {
	testAggregator := NewAggregator(Config{OnTimeThresholdSeconds: 120, WindowDuration: 30 * 24 * time.Hour})

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	testAggregator.Record(testObservation(120, observedAt, "", 0))
	testAggregator.Record(testObservation(-120, observedAt.Add(time.Minute), "", 0))
	testAggregator.Record(testObservation(121, observedAt.Add(2*time.Minute), "", 0))

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	// |delay| <= threshold counts, strict beyond it does not
	assert.InDelta(t, 2.0/3.0, stats.OnTimePercentage, 1e-9)
}

func TestMedianAndP90(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	delays := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	for index, delay := range delays {
		testAggregator.Record(testObservation(delay, observedAt.Add(time.Duration(index)*time.Minute), "", 0))
	}

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	assert.Equal(t, 55, stats.MedianDelaySeconds)
	assert.Equal(t, 90, stats.P90DelaySeconds)
}

func TestDuplicateObservationsBothCount(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	observation := testObservation(30, observedAt, "trip-1", 0)

	testAggregator.Record(observation)
	testAggregator.Record(observation)

	stats, err := testAggregator.ComputeStats(observation.BucketKey())
	require.NoError(t, err)

	// de-duplication is an upstream concern, not the aggregator's
	assert.Equal(t, 2, stats.SampleCount)
}

func TestWindowPruning(t *testing.T) {
	testAggregator := NewAggregator(Config{OnTimeThresholdSeconds: 120, WindowDuration: 24 * time.Hour})

	// both land in the same hour/day-of-week bucket, a week apart
	oldObservedAt := time.Date(2024, 2, 26, 8, 0, 0, 0, transit.GetAgencyLocation())
	newObservedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())

	testAggregator.Record(testObservation(600, oldObservedAt, "", 0))
	testAggregator.Record(testObservation(0, newObservedAt, "", 0))

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", newObservedAt))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SampleCount)
	assert.Equal(t, 1.0, stats.OnTimePercentage)
}

func TestHeadwayStdSeparatesDirections(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())

	// inbound every 5 minutes, outbound interleaved 2 minutes offset
	for i := 0; i < 5; i++ {
		testAggregator.Record(testObservation(0, observedAt.Add(time.Duration(i*5)*time.Minute), fmt.Sprintf("in-%d", i), 0))
		testAggregator.Record(testObservation(0, observedAt.Add(time.Duration(i*5+2)*time.Minute), fmt.Sprintf("out-%d", i), 1))
	}

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	// both directions run a perfectly even 5 minute headway, so mixing
	// directions is the only thing that could produce nonzero variance
	assert.InDelta(t, 0.0, stats.HeadwayStdSeconds, 1e-9)
}

func TestHeadwayStdIgnoresSameTripRepeats(t *testing.T) {
	testAggregator := NewAggregator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())

	testAggregator.Record(testObservation(0, observedAt, "trip-1", 0))
	testAggregator.Record(testObservation(0, observedAt.Add(30*time.Second), "trip-1", 0))
	testAggregator.Record(testObservation(0, observedAt.Add(5*time.Minute), "trip-2", 0))

	stats, err := testAggregator.ComputeStats(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	// only one real gap exists (trip-1 -> trip-2) so deviation is zero
	assert.InDelta(t, 0.0, stats.HeadwayStdSeconds, 1e-9)
}
