package routes

import (
	"github.com/commuteguardian/commuteguardian/pkg/directory"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func StopsRouter(router fiber.Router) {
	router.Get("/", listStops)
	router.Get("/:identifier", getStop)
	router.Get("/:identifier/departures", getStopDepartures)
}

func listStops(c *fiber.Ctx) error {
	stops := directory.MongoStopDirectory{}.GetAllStops()

	stopsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, stops)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce stops",
		})
	}

	return c.JSON(stopsReduced)
}

func getStop(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	stop := directory.MongoStopDirectory{}.GetStop(identifier)

	if stop == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}

	return c.JSON(stop)
}
