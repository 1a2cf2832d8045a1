package routes

import (
	"github.com/commuteguardian/commuteguardian/pkg/directory"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func RoutesRouter(router fiber.Router) {
	router.Get("/", listRoutes)
	router.Get("/:identifier", getRoute)
}

func listRoutes(c *fiber.Ctx) error {
	routes := directory.MongoRouteDirectory{}.GetAllRoutes()

	routesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, routes)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce routes",
		})
	}

	return c.JSON(routesReduced)
}

func getRoute(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	route := directory.MongoRouteDirectory{}.GetRoute(identifier)

	if route == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Route matching Route Identifier",
		})
	}

	return c.JSON(route)
}
