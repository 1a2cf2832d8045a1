package api

import (
	"github.com/commuteguardian/commuteguardian/pkg/advisor"
	"github.com/commuteguardian/commuteguardian/pkg/api/routes"
	"github.com/commuteguardian/commuteguardian/pkg/database"
	"github.com/commuteguardian/commuteguardian/pkg/directory"
	"github.com/commuteguardian/commuteguardian/pkg/elastic_client"
	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/replay"
	"github.com/commuteguardian/commuteguardian/pkg/redis_client"
	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/commuteguardian/commuteguardian/pkg/risk"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}

					delayEstimator := estimator.NewEstimator(estimator.GetConfig())
					windowAggregator := reliability.NewAggregator(reliability.GetConfig())

					riskClassifier := risk.NewClassifier(
						risk.GetConfig(),
						delayEstimator,
						windowAggregator,
						directory.MongoRouteDirectory{},
						directory.MongoStopDirectory{},
						directory.MongoAlertSource{},
					)
					leaveNowAdvisor := advisor.NewAdvisor(advisor.GetConfig(), riskClassifier)

					applier := ingest.NewApplier(delayEstimator, windowAggregator)
					if err := ingest.StartConsumers(applier); err != nil {
						return err
					}

					queue, err := ingest.OpenObservationQueue()
					if err != nil {
						return err
					}

					replayManager := ingest.NewManager(&replay.Driver{
						FixturesPath: replay.DefaultFixturesPath,
						Queue:        queue,
					})

					routes.Setup(delayEstimator, windowAggregator, riskClassifier, leaveNowAdvisor, replayManager)

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
