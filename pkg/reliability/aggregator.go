package reliability

import (
	"errors"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/commuteguardian/commuteguardian/pkg/util"
	"golang.org/x/exp/slices"
)

// ErrWindowEmpty is the expected result of computing stats for a bucket with
// no retained observations. Not a failure.
var ErrWindowEmpty = errors.New("no retained observations for bucket")

const numShards = 32

// ReliabilityWindowStats is rebuilt from a bucket's retained window on each
// ComputeStats call.
type ReliabilityWindowStats struct {
	Key transit.BucketKey `groups:"basic"`

	SampleCount        int     `groups:"basic"`
	MedianDelaySeconds int     `groups:"basic"`
	P90DelaySeconds    int     `groups:"basic"`
	OnTimePercentage   float64 `groups:"basic"`
	HeadwayStdSeconds  float64 `groups:"basic"`
}

type retainedObservation struct {
	DelaySeconds int
	ObservedAt   time.Time
	DirectionID  int
	TripID       string
}

type bucketWindow struct {
	observations []retainedObservation
	newest       time.Time
}

type shard struct {
	mutex   sync.RWMutex
	buckets map[transit.BucketKey]*bucketWindow
}

// Aggregator keeps a trailing window of observations per bucket and derives
// distribution statistics from it on demand. The window is a fixed trailing
// duration anchored to the newest observation seen for that bucket, so
// replayed historical feeds age out the same way a live feed does.
type Aggregator struct {
	config Config
	shards [numShards]*shard
}

func NewAggregator(config Config) *Aggregator {
	aggregator := &Aggregator{
		config: config,
	}

	for i := range aggregator.shards {
		aggregator.shards[i] = &shard{
			buckets: map[transit.BucketKey]*bucketWindow{},
		}
	}

	return aggregator
}

func (a *Aggregator) shardFor(key transit.BucketKey) *shard {
	hasher := fnv.New32a()
	hasher.Write([]byte(key.String()))

	return a.shards[hasher.Sum32()%numShards]
}

// Record appends one observation to its bucket's retained window. No
// de-duplication happens here; identical observations count twice.
func (a *Aggregator) Record(observation *transit.ArrivalObservation) {
	key := observation.BucketKey()
	bucketShard := a.shardFor(key)

	bucketShard.mutex.Lock()
	defer bucketShard.mutex.Unlock()

	window := bucketShard.buckets[key]
	if window == nil {
		window = &bucketWindow{}
		bucketShard.buckets[key] = window
	}

	window.observations = append(window.observations, retainedObservation{
		DelaySeconds: observation.DelaySeconds,
		ObservedAt:   observation.ObservedAt,
		DirectionID:  observation.DirectionID,
		TripID:       observation.TripID,
	})

	if observation.ObservedAt.After(window.newest) {
		window.newest = observation.ObservedAt
	}

	cutoff := window.newest.Add(-a.config.WindowDuration)
	util.InPlaceFilter(&window.observations, func(retained retainedObservation) bool {
		return !retained.ObservedAt.Before(cutoff)
	})
}

// ComputeStats rebuilds the bucket's statistics from its retained window.
func (a *Aggregator) ComputeStats(key transit.BucketKey) (ReliabilityWindowStats, error) {
	bucketShard := a.shardFor(key)

	bucketShard.mutex.RLock()
	defer bucketShard.mutex.RUnlock()

	window := bucketShard.buckets[key]
	if window == nil || len(window.observations) == 0 {
		return ReliabilityWindowStats{}, ErrWindowEmpty
	}

	delays := make([]int, len(window.observations))
	onTimeCount := 0

	for index, retained := range window.observations {
		delays[index] = retained.DelaySeconds

		if absInt(retained.DelaySeconds) <= a.config.OnTimeThresholdSeconds {
			onTimeCount += 1
		}
	}

	slices.Sort(delays)

	return ReliabilityWindowStats{
		Key: key,

		SampleCount:        len(delays),
		MedianDelaySeconds: median(delays),
		P90DelaySeconds:    percentile(delays, 90),
		OnTimePercentage:   float64(onTimeCount) / float64(len(delays)),
		HeadwayStdSeconds:  headwayStd(window.observations),
	}, nil
}

func absInt(value int) int {
	if value < 0 {
		return -value
	}
	return value
}

// delays must already be sorted
func median(delays []int) int {
	count := len(delays)
	if count%2 == 1 {
		return delays[count/2]
	}

	return (delays[count/2-1] + delays[count/2]) / 2
}

// nearest-rank percentile, delays must already be sorted
func percentile(delays []int, rank int) int {
	count := len(delays)
	index := (rank*count + 99) / 100

	if index < 1 {
		index = 1
	}
	if index > count {
		index = count
	}

	return delays[index-1]
}

// headwayStd is the standard deviation of inter-arrival gaps between
// consecutive distinct trips in the same direction. Direction extends the
// bucket key here because inbound and outbound arrivals interleave at the
// same platform pair and mixing them inflates the variance.
func headwayStd(observations []retainedObservation) float64 {
	byDirection := map[int][]retainedObservation{}
	for _, retained := range observations {
		byDirection[retained.DirectionID] = append(byDirection[retained.DirectionID], retained)
	}

	var gaps []float64

	for _, directionObservations := range byDirection {
		slices.SortStableFunc(directionObservations, func(a, b retainedObservation) int {
			return a.ObservedAt.Compare(b.ObservedAt)
		})

		for index := 1; index < len(directionObservations); index++ {
			previous := directionObservations[index-1]
			current := directionObservations[index]

			if previous.TripID != "" && previous.TripID == current.TripID {
				continue
			}

			gaps = append(gaps, current.ObservedAt.Sub(previous.ObservedAt).Seconds())
		}
	}

	if len(gaps) == 0 {
		return 0
	}

	mean := 0.0
	for _, gap := range gaps {
		mean += gap
	}
	mean /= float64(len(gaps))

	variance := 0.0
	for _, gap := range gaps {
		variance += (gap - mean) * (gap - mean)
	}
	variance /= float64(len(gaps))

	return math.Sqrt(variance)
}
