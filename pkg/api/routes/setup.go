package routes

import (
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/advisor"
	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/redis_client"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/risk"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
)

const riskCacheExpiration = 60 * time.Second

var (
	delayEstimator   *estimator.Estimator
	windowAggregator *reliability.Aggregator
	riskClassifier   *risk.Classifier
	leaveNowAdvisor  *advisor.Advisor
	replayManager    *ingest.Manager

	riskCache *cache.Cache[string]
)

// Setup wires the request handlers to the engine instances owned by the
// server process.
func Setup(e *estimator.Estimator, a *reliability.Aggregator, c *risk.Classifier, adv *advisor.Advisor, replay *ingest.Manager) {
	delayEstimator = e
	windowAggregator = a
	riskClassifier = c
	leaveNowAdvisor = adv
	replayManager = replay

	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(riskCacheExpiration))
	riskCache = cache.New[string](redisStore)
}
