package routes

import (
	"errors"

	"github.com/commuteguardian/commuteguardian/pkg/reliability"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func ReliabilityRouter(router fiber.Router) {
	router.Get("/", getReliability)
}

func getReliability(c *fiber.Ctx) error {
	key, err := bucketKeyFromQuery(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stats, err := windowAggregator.ComputeStats(key)
	if err != nil {
		if errors.Is(err, reliability.ErrWindowEmpty) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error":  "No observations in the reliability window for this route, stop and time",
				"bucket": key.String(),
			})
		}

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	statsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, stats)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce reliability stats",
		})
	}

	return c.JSON(statsReduced)
}
