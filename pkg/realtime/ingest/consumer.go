package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/commuteguardian/commuteguardian/pkg/redis_client"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/rs/zerolog/log"
)

const ObservationQueueName = "observations-queue"

const numConsumers = 5
const batchSize = 200

// StartConsumers runs the background queue consumers that drain normalised
// observations into the engine.
func StartConsumers(applier *Applier) error {
	log.Info().Msg("Starting observation consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(ObservationQueueName)
	if err != nil {
		return err
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		return err
	}

	for i := 0; i < numConsumers; i++ {
		if _, err := queue.AddBatchConsumer(fmt.Sprintf("%s-%d", ObservationQueueName, i), batchSize, 2*time.Second, NewBatchConsumer(applier, i)); err != nil {
			return err
		}
	}

	return nil
}

// OpenObservationQueue is the publish side used by the feed drivers.
func OpenObservationQueue() (rmq.Queue, error) {
	return redis_client.QueueConnection.OpenQueue(ObservationQueueName)
}

// PublishObservation serialises one observation onto the queue.
func PublishObservation(queue rmq.Queue, observation *transit.ArrivalObservation) error {
	if observation == nil {
		return nil
	}

	observationJson, err := json.Marshal(observation)
	if err != nil {
		return err
	}

	return queue.PublishBytes(observationJson)
}

type BatchConsumer struct {
	id      int
	applier *Applier
}

func NewBatchConsumer(applier *Applier, id int) *BatchConsumer {
	return &BatchConsumer{
		id:      id,
		applier: applier,
	}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	startTime := time.Now()
	applied := 0

	for _, payload := range batch.Payloads() {
		var observation *transit.ArrivalObservation
		if err := json.Unmarshal([]byte(payload), &observation); err != nil {
			log.Warn().Err(err).Int("consumer", consumer.id).Msg("Skipping malformed observation payload")
			continue
		}

		consumer.applier.Apply(observation)
		applied += 1
	}

	log.Debug().
		Int("consumer", consumer.id).
		Int("applied", applied).
		Str("time", time.Since(startTime).String()).
		Msg("Applied observation batch")

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack observation batch")
		}
	}
}
