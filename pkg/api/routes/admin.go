package routes

import (
	"errors"
	"strconv"

	importer "github.com/commuteguardian/commuteguardian/pkg/dataimporter/mbta"
	"github.com/commuteguardian/commuteguardian/pkg/realtime/ingest"
	mbtaclient "github.com/commuteguardian/commuteguardian/pkg/realtime/mbta"
	"github.com/gofiber/fiber/v2"
)

func AdminRouter(router fiber.Router) {
	router.Post("/load-static", postLoadStatic)

	router.Post("/replay/start", postReplayStart)
	router.Post("/replay/stop", postReplayStop)
	router.Get("/replay/status", getReplayStatus)
}

func postLoadStatic(c *fiber.Ctx) error {
	staticImporter := &importer.Importer{Client: mbtaclient.NewClient()}

	source := c.Query("source", "api")

	stopCount, err := staticImporter.ImportStops(source, c.Query("stops_file"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	routeCount, err := staticImporter.ImportRoutes(source, c.Query("routes_file"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "loaded",
		"stops":  stopCount,
		"routes": routeCount,
	})
}

func postReplayStart(c *fiber.Ctx) error {
	speed, err := strconv.ParseFloat(c.Query("speed", "10"), 64)
	if err != nil || speed <= 0 {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter speed should be a positive number",
		})
	}

	if err := replayManager.Start(speed); err != nil {
		if errors.Is(err, ingest.ErrAlreadyRunning) {
			c.SendStatus(fiber.StatusConflict)
			return c.JSON(fiber.Map{
				"error":  err.Error(),
				"status": replayManager.Status(),
			})
		}

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": replayManager.Status(),
	})
}

func postReplayStop(c *fiber.Ctx) error {
	// stopping an idle replay is a no-op, not an error
	replayManager.Stop()

	return c.JSON(fiber.Map{
		"status": replayManager.Status(),
	})
}

func getReplayStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": replayManager.Status(),
	})
}
