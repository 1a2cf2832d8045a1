package mbta

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "mbta",
		Usage: "Poll the MBTA V3 predictions API into the observation queue",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the prediction pollers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "routes",
						Usage: "comma separated route IDs (defaults to the rapid transit lines)",
					},
					&cli.DurationFlag{
						Name:  "refresh",
						Value: DefaultRefreshRate,
						Usage: "poll interval per route",
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

					var routeIDs []string
					if routesFlag := c.String("routes"); routesFlag != "" {
						routeIDs = strings.Split(routesFlag, ",")
					}

					manager := ingest.NewManager(&Driver{
						RouteIDs:    routeIDs,
						RefreshRate: c.Duration("refresh"),

						Client: NewClient(),
						Queue:  queue,
					})

					if err := manager.Start(1); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					<-signals

					log.Info().Msg("Signal received, draining prediction pollers")
					manager.Stop()

					return nil
				},
			},
		},
	}
}
