package routes

import (
	"errors"
	"strconv"

	"github.com/commuteguardian/commuteguardian/pkg/advisor"
	"github.com/gofiber/fiber/v2"
)

func LeaveNowRouter(router fiber.Router) {
	router.Get("/", getLeaveNow)
}

func getLeaveNow(c *fiber.Ctx) error {
	fromStopID := c.Query("from")
	toStopID := c.Query("to")
	routeID := c.Query("route")

	if fromStopID == "" || toStopID == "" || routeID == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameters from, to and route are required",
		})
	}

	journeyTimeMinutes, err := strconv.ParseFloat(c.Query("journey_time", "30"), 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter journey_time should be a number of minutes",
		})
	}

	advice, err := leaveNowAdvisor.Advise(fromStopID, toStopID, routeID, journeyTimeMinutes)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidJourney) {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(advice)
}
