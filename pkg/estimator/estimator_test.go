package estimator

import (
	"sync"
	"testing"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testObservation(delaySeconds int, observedAt time.Time) *transit.ArrivalObservation {
	return &transit.ArrivalObservation{
		RouteID:              "Red",
		StopID:               "place-pktrm",
		TripID:               "trip-1",
		ObservedAt:           observedAt,
		DelaySeconds:         delaySeconds,
		ScheduleRelationship: transit.ScheduleRelationshipScheduled,
	}
}

func TestPredictColdBucket(t *testing.T) {
	testEstimator := NewEstimator(GetConfig())

	key, err := transit.NewBucketKey("Red", "place-pktrm", 8, "MON")
	require.NoError(t, err)

	_, err = testEstimator.Predict(key)
	assert.ErrorIs(t, err, ErrBucketNotFound)
}

func TestFirstObservationSeedsValue(t *testing.T) {
	testEstimator := NewEstimator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 15, 0, 0, transit.GetAgencyLocation())
	observation := testObservation(90, observedAt)

	testEstimator.Update(observation)

	state, err := testEstimator.Predict(observation.BucketKey())
	require.NoError(t, err)

	assert.Equal(t, float64(90), state.Value)
	assert.Equal(t, int64(1), state.SampleCount)
	assert.Equal(t, 0.3, state.Alpha)
}

func TestValueMatchesClosedFormRecurrence(t *testing.T) {
	testEstimator := NewEstimator(Config{Alpha: 0.3})

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	delays := []int{30, -15, 60, 120, 0, 45}

	expected := 0.0
	for index, delay := range delays {
		observation := testObservation(delay, observedAt.Add(time.Duration(index)*time.Minute))
		testEstimator.Update(observation)

		if index == 0 {
			expected = float64(delay)
		} else {
			expected = 0.3*float64(delay) + 0.7*expected
		}
	}

	key := transit.BucketKeyFor("Red", "place-pktrm", observedAt)
	state, err := testEstimator.Predict(key)
	require.NoError(t, err)

	assert.InDelta(t, expected, state.Value, 1e-9)
	assert.Equal(t, int64(len(delays)), state.SampleCount)
}

func TestBucketsAreIndependent(t *testing.T) {
	testEstimator := NewEstimator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())

	redObservation := testObservation(300, observedAt)
	orangeObservation := testObservation(-30, observedAt)
	orangeObservation.RouteID = "Orange"
	orangeObservation.StopID = "place-dwnxg"

	testEstimator.Update(redObservation)
	testEstimator.Update(orangeObservation)

	redState, err := testEstimator.Predict(redObservation.BucketKey())
	require.NoError(t, err)
	orangeState, err := testEstimator.Predict(orangeObservation.BucketKey())
	require.NoError(t, err)

	assert.Equal(t, float64(300), redState.Value)
	assert.Equal(t, float64(-30), orangeState.Value)
}

func TestConcurrentUpdatesSameBucket(t *testing.T) {
	testEstimator := NewEstimator(GetConfig())

	observedAt := time.Date(2024, 3, 4, 8, 30, 0, 0, transit.GetAgencyLocation())
	const updates = 500

	var waitGroup sync.WaitGroup
	for i := 0; i < updates; i++ {
		waitGroup.Add(1)
		go func(delay int) {
			defer waitGroup.Done()
			testEstimator.Update(testObservation(delay%120, observedAt))
		}(i)
	}
	waitGroup.Wait()

	state, err := testEstimator.Predict(transit.BucketKeyFor("Red", "place-pktrm", observedAt))
	require.NoError(t, err)

	assert.Equal(t, int64(updates), state.SampleCount)
}
