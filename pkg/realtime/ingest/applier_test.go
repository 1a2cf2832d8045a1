package ingest

import (
	"testing"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplierFeedsBothConsumers(t *testing.T) {
	delayEstimator := estimator.NewEstimator(estimator.GetConfig())
	aggregator := reliability.NewAggregator(reliability.GetConfig())
	applier := NewApplier(delayEstimator, aggregator)

	observedAt := time.Date(2024, 3, 4, 8, 0, 0, 0, transit.GetAgencyLocation())
	observation := &transit.ArrivalObservation{
		RouteID:      "Red",
		StopID:       "place-pktrm",
		ObservedAt:   observedAt,
		DelaySeconds: 45,
	}

	applier.Apply(observation)
	applier.Apply(nil) // skipped message, must be harmless

	state, err := delayEstimator.Predict(observation.BucketKey())
	require.NoError(t, err)
	assert.Equal(t, float64(45), state.Value)

	stats, err := aggregator.ComputeStats(observation.BucketKey())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SampleCount)
}
