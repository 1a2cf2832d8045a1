package ingest

import (
	"bytes"
	"encoding/json"

	"github.com/commuteguardian/commuteguardian/pkg/elastic_client"
	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
)

// Applier feeds each normalised observation to the estimator and the
// aggregator exactly once, and archives it when Elasticsearch is configured.
type Applier struct {
	Estimator  *estimator.Estimator
	Aggregator *reliability.Aggregator

	ArchiveIndex string
}

func NewApplier(delayEstimator *estimator.Estimator, aggregator *reliability.Aggregator) *Applier {
	return &Applier{
		Estimator:  delayEstimator,
		Aggregator: aggregator,

		ArchiveIndex: "observation-archive-1",
	}
}

func (a *Applier) Apply(observation *transit.ArrivalObservation) {
	if observation == nil {
		return
	}

	a.Estimator.Update(observation)
	a.Aggregator.Record(observation)

	observationJson, _ := json.Marshal(observation)
	elastic_client.IndexRequest(a.ArchiveIndex, bytes.NewReader(observationJson))
}
