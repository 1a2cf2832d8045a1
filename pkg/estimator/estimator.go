package estimator

import (
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/transit"
)

// ErrBucketNotFound is the expected result of predicting against a bucket
// with no observations yet. Callers fall back rather than fail.
var ErrBucketNotFound = errors.New("no estimator state for bucket")

const numShards = 32

// EwmaState is the smoothed delay estimate for a single bucket. Mutated only
// by the owning bucket's Update path.
type EwmaState struct {
	Key transit.BucketKey `groups:"basic"`

	Value       float64   `groups:"basic"` // seconds, positive=late
	Alpha       float64   `groups:"basic"`
	SampleCount int64     `groups:"basic"`
	LastUpdated time.Time `groups:"basic"`
}

type shard struct {
	mutex   sync.RWMutex
	buckets map[transit.BucketKey]*EwmaState
}

// Estimator maintains one exponentially weighted moving average per bucket.
// State is sharded so updates for different buckets never contend on a
// single lock, while updates for the same bucket serialise on its shard.
type Estimator struct {
	config Config
	shards [numShards]*shard
}

func NewEstimator(config Config) *Estimator {
	estimator := &Estimator{
		config: config,
	}

	for i := range estimator.shards {
		estimator.shards[i] = &shard{
			buckets: map[transit.BucketKey]*EwmaState{},
		}
	}

	return estimator
}

func (e *Estimator) shardFor(key transit.BucketKey) *shard {
	hasher := fnv.New32a()
	hasher.Write([]byte(key.String()))

	return e.shards[hasher.Sum32()%numShards]
}

// Update folds one observation into its bucket's state. Observations are
// applied in arrival order; a late-arriving out-of-order observation shifts
// the trajectory the same as any other sample, so recency-consistency is not
// guaranteed but any fixed arrival order reproduces the same value.
func (e *Estimator) Update(observation *transit.ArrivalObservation) {
	key := observation.BucketKey()
	bucketShard := e.shardFor(key)

	bucketShard.mutex.Lock()
	defer bucketShard.mutex.Unlock()

	state := bucketShard.buckets[key]
	if state == nil {
		bucketShard.buckets[key] = &EwmaState{
			Key:         key,
			Value:       float64(observation.DelaySeconds),
			Alpha:       e.config.Alpha,
			SampleCount: 1,
			LastUpdated: observation.ObservedAt,
		}
		return
	}

	state.Value = state.Alpha*float64(observation.DelaySeconds) + (1-state.Alpha)*state.Value
	state.SampleCount += 1
	state.LastUpdated = observation.ObservedAt
}

// Predict returns a copy of the bucket's current state, or ErrBucketNotFound
// for a cold bucket.
func (e *Estimator) Predict(key transit.BucketKey) (EwmaState, error) {
	bucketShard := e.shardFor(key)

	bucketShard.mutex.RLock()
	defer bucketShard.mutex.RUnlock()

	state := bucketShard.buckets[key]
	if state == nil {
		return EwmaState{}, ErrBucketNotFound
	}

	return *state, nil
}
