package mbta

import (
	"context"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/normalizer"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const DefaultRefreshRate = 30 * time.Second

// DefaultRouteIDs are the rapid transit lines polled when no explicit set
// is configured.
var DefaultRouteIDs = []string{"Red", "Orange", "Blue", "Green-B", "Green-C", "Green-D", "Green-E"}

// RouteArrivalTracker polls the predictions feed for one route and pushes
// normalised observations onto the queue.
type RouteArrivalTracker struct {
	RouteID     string
	RefreshRate time.Duration

	Client *Client
	Queue  rmq.Queue
}

func (t *RouteArrivalTracker) Run(ctx context.Context) error {
	log.Info().
		Str("route", t.RouteID).
		Dur("refresh", t.RefreshRate).
		Msg("Registering route arrival tracker")

	datasource := &transit.DataSource{
		OriginalFormat: "MBTA-JSON",
		Provider:       "US-MBTA",
		Dataset:        "predictions/" + t.RouteID,
	}

	for {
		startTime := time.Now()

		t.pollOnce(datasource)

		executionDuration := time.Since(startTime)
		waitTime := t.RefreshRate - executionDuration
		if waitTime < 0 {
			waitTime = 0
		}

		select {
		case <-ctx.Done():
			log.Info().Str("route", t.RouteID).Msg("Route arrival tracker drained")
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func (t *RouteArrivalTracker) pollOnce(datasource *transit.DataSource) {
	predictions, err := t.Client.GetPredictions(t.RouteID)
	if err != nil {
		log.Error().Err(err).Str("route", t.RouteID).Msg("Failed to fetch predictions")
		return
	}

	published := 0

	for _, prediction := range predictions {
		observation := normalizer.FromPrediction(prediction, datasource)
		if observation == nil {
			continue
		}

		if err := ingest.PublishObservation(t.Queue, observation); err != nil {
			log.Error().Err(err).Str("route", t.RouteID).Msg("Failed to publish observation")
			continue
		}
		published += 1
	}

	log.Debug().
		Str("route", t.RouteID).
		Int("predictions", len(predictions)).
		Int("published", published).
		Msg("Polled route predictions")
}

// Driver runs one tracker per route under a shared lifecycle. The speed
// multiplier is meaningless against a live feed and is ignored.
type Driver struct {
	RouteIDs    []string
	RefreshRate time.Duration

	Client *Client
	Queue  rmq.Queue
}

func (d *Driver) Run(ctx context.Context, speedMultiplier float64) error {
	routeIDs := d.RouteIDs
	if len(routeIDs) == 0 {
		routeIDs = DefaultRouteIDs
	}

	refreshRate := d.RefreshRate
	if refreshRate == 0 {
		refreshRate = DefaultRefreshRate
	}

	trackerPool := pool.New().WithContext(ctx)

	for _, routeID := range routeIDs {
		tracker := &RouteArrivalTracker{
			RouteID:     routeID,
			RefreshRate: refreshRate,

			Client: d.Client,
			Queue:  d.Queue,
		}

		trackerPool.Go(tracker.Run)
	}

	return trackerPool.Wait()
}
