package main

import (
	"os"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/api"
	importer "github.com/commuteguardian/commuteguardian/pkg/dataimporter/mbta"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/gtfsrt"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/mbta"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/replay"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("COMMUTE_GUARDIAN_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("COMMUTE_GUARDIAN_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "commute-guardian",
		Description: "Single binary of truth for Commute Guardian - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			importer.RegisterCLI(),
			replay.RegisterCLI(),
			mbta.RegisterCLI(),
			gtfsrt.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
