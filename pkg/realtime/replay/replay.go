package replay

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/normalizer"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/gocarina/gocsv"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const DefaultFixturesPath = "fixtures/gtfsrt"

// Driver replays recorded observation fixtures at an accelerated speed, as
// if they were arriving from a live feed. Gaps between consecutive fixture
// timestamps are divided by the speed multiplier.
type Driver struct {
	FixturesPath string
	Queue        rmq.Queue

	Debug bool
}

func (d *Driver) datasource() *transit.DataSource {
	return &transit.DataSource{
		OriginalFormat: "Fixture-CSV",
		Provider:       "US-MBTA",
		Dataset:        d.FixturesPath,
	}
}

func (d *Driver) loadRecords() ([]*normalizer.FixtureRecord, error) {
	entries, err := os.ReadDir(d.FixturesPath)
	if err != nil {
		return nil, err
	}

	var records []*normalizer.FixtureRecord

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}

		file, err := os.Open(filepath.Join(d.FixturesPath, entry.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable fixture file")
			continue
		}

		var fileRecords []*normalizer.FixtureRecord
		err = gocsv.UnmarshalFile(file, &fileRecords)
		file.Close()

		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unparseable fixture file")
			continue
		}

		records = append(records, fileRecords...)
	}

	slices.SortStableFunc(records, func(a, b *normalizer.FixtureRecord) int {
		if a.ObservedAt < b.ObservedAt {
			return -1
		}
		if a.ObservedAt > b.ObservedAt {
			return 1
		}
		return 0
	})

	return records, nil
}

func (d *Driver) Run(ctx context.Context, speedMultiplier float64) error {
	if speedMultiplier <= 0 {
		speedMultiplier = 1
	}

	records, err := d.loadRecords()
	if err != nil {
		return err
	}

	if d.Debug {
		pretty.Println(len(records), "fixture records loaded")
	}

	log.Info().
		Int("records", len(records)).
		Float64("speed", speedMultiplier).
		Str("path", d.FixturesPath).
		Msg("Starting fixture replay")

	datasource := d.datasource()
	published := 0

	var previousObservedAt time.Time

	for _, record := range records {
		observation := normalizer.FromFixtureRecord(record, datasource)
		if observation == nil {
			continue
		}

		if !previousObservedAt.IsZero() {
			gap := observation.ObservedAt.Sub(previousObservedAt)
			if gap > 0 {
				wait := time.Duration(float64(gap) / speedMultiplier)

				select {
				case <-ctx.Done():
					log.Info().Int("published", published).Msg("Fixture replay drained")
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		}
		previousObservedAt = observation.ObservedAt

		if err := ingest.PublishObservation(d.Queue, observation); err != nil {
			log.Error().Err(err).Msg("Failed to publish fixture observation")
			continue
		}
		published += 1
	}

	log.Info().Int("published", published).Msg("Fixture replay complete")

	return nil
}
