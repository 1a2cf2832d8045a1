package replay

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
		Name:  "replay",
		Usage: "Replay recorded observation fixtures into the observation queue",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an accelerated fixture replay",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "speed",
						Value: 10,
						Usage: "replay speed multiplier",
					},
					&cli.StringFlag{
						Name:  "fixtures",
						Value: DefaultFixturesPath,
						Usage: "directory of fixture CSV files",
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

					manager := ingest.NewManager(&Driver{
						FixturesPath: c.String("fixtures"),
						Queue:        queue,
					})

					if err := manager.Start(c.Float64("speed")); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					<-signals

					log.Info().Msg("Signal received, draining replay")
					manager.Stop()

					return nil
				},
			},
		},
	}
}
