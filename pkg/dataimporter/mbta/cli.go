package mbta

import (
	"github.com/commuteguardian/commuteguardian/pkg/database"
	mbtaclient "github.com/commuteguardian/commuteguardian/pkg/realtime/mbta"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Load static reference data",
		Subcommands: []*cli.Command{
			{
				Name:  "stops",
				Usage: "import stop reference data",
				Flags: importFlags(),
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					importer := &Importer{Client: mbtaclient.NewClient()}
					_, err := importer.ImportStops(c.String("source"), c.String("file"))
					return err
				},
			},
			{
				Name:  "routes",
				Usage: "import route reference data",
				Flags: importFlags(),
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					importer := &Importer{Client: mbtaclient.NewClient()}
					_, err := importer.ImportRoutes(c.String("source"), c.String("file"))
					return err
				},
			},
			{
				Name:  "all",
				Usage: "import stops and routes from the live API",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					importer := &Importer{Client: mbtaclient.NewClient()}
					if _, err := importer.ImportStops("api", ""); err != nil {
						return err
					}
					_, err := importer.ImportRoutes("api", "")
					return err
				},
			},
		},
	}
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Value: "api",
			Usage: "where to read from: api or file",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "JSON snapshot path when source=file",
		},
	}
}
