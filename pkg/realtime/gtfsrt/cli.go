package gtfsrt

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "gtfsrt",
		Usage: "Poll a GTFS-RT trip updates feed into the observation queue",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the trip updates poller",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "feed",
						Usage: "trip updates feed URL (defaults to the MBTA public feed)",
					},
					&cli.DurationFlag{
						Name:  "refresh",
						Value: DefaultRefreshRate,
						Usage: "poll interval",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					queue, err := ingest.OpenObservationQueue()
					if err != nil {
						return err
					}

					driver := NewDriver(queue)
					if c.String("feed") != "" {
						driver.FeedURL = c.String("feed")
					}
					driver.RefreshRate = c.Duration("refresh")

					manager := ingest.NewManager(driver)
					if err := manager.Start(1); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					<-signals

					log.Info().Msg("Signal received, draining trip updates poller")
					manager.Stop()

					return nil
				},
			},
		},
	}
}
