package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfsrtproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/adjust/rmq/v5"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/normalizer"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/commuteguardian/commuteguardian/pkg/util"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

const DefaultRefreshRate = 60 * time.Second

// DefaultTripUpdatesURL is the MBTA public GTFS-RT trip updates feed.
const DefaultTripUpdatesURL = "https://cdn.mbta.com/realtime/TripUpdates.pb"

// Driver polls a GTFS-RT TripUpdates feed and publishes each usable stop
// time update as an observation.
type Driver struct {
	FeedURL     string
	RefreshRate time.Duration

	Queue rmq.Queue
}

func NewDriver(queue rmq.Queue) *Driver {
	env := util.GetEnvironmentVariables()

	feedURL := DefaultTripUpdatesURL
	if env["COMMUTE_GUARDIAN_GTFSRT_TRIP_UPDATES_URL"] != "" {
		feedURL = env["COMMUTE_GUARDIAN_GTFSRT_TRIP_UPDATES_URL"]
	}

	return &Driver{
		FeedURL:     feedURL,
		RefreshRate: DefaultRefreshRate,

		Queue: queue,
	}
}

func (d *Driver) Run(ctx context.Context, speedMultiplier float64) error {
	refreshRate := d.RefreshRate
	if refreshRate == 0 {
		refreshRate = DefaultRefreshRate
	}

	log.Info().
		Str("feed", d.FeedURL).
		Dur("refresh", refreshRate).
		Msg("Registering GTFS-RT trip updates poller")

	datasource := &transit.DataSource{
		OriginalFormat: "GTFS-RT",
		Provider:       "US-MBTA",
		Dataset:        d.FeedURL,
	}

	for {
		startTime := time.Now()

		if err := d.pollOnce(datasource); err != nil {
			log.Error().Err(err).Msg("Failed to poll trip updates feed")
		}

		executionDuration := time.Since(startTime)
		waitTime := refreshRate - executionDuration
		if waitTime < 0 {
			waitTime = 0
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("GTFS-RT trip updates poller drained")
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func (d *Driver) pollOnce(datasource *transit.DataSource) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(d.FeedURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trip updates feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	feed := gtfsrtproto.FeedMessage{}
	if err := proto.Unmarshal(body, &feed); err != nil {
		return err
	}

	feedTimestamp := time.Now()
	if feed.Header != nil && feed.Header.Timestamp != nil {
		feedTimestamp = time.Unix(int64(feed.Header.GetTimestamp()), 0)
	}

	published := 0

	for _, entity := range feed.Entity {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		trip := tripUpdate.GetTrip()
		if trip == nil {
			continue
		}

		vehicleID := ""
		if vehicle := tripUpdate.GetVehicle(); vehicle != nil {
			vehicleID = vehicle.GetId()
		}

		for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
			observation := normalizer.FromStopTimeUpdate(trip, vehicleID, stopTimeUpdate, feedTimestamp, datasource)
			if observation == nil {
				continue
			}

			if err := ingest.PublishObservation(d.Queue, observation); err != nil {
				log.Error().Err(err).Str("trip", trip.GetTripId()).Msg("Failed to publish observation")
				continue
			}
			published += 1
		}
	}

	log.Debug().
		Int("entities", len(feed.Entity)).
		Int("published", published).
		Msg("Polled trip updates feed")

	return nil
}
