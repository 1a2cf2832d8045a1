package routes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/commuteguardian/commuteguardian/pkg/risk"
	"github.com/gofiber/fiber/v2"
)

func RiskRouter(router fiber.Router) {
	router.Get("/", getRisk)
}

func getRisk(c *fiber.Ctx) error {
	routeID := c.Query("route")
	stopID := c.Query("stop")

	// stop is optional - a route-only classification falls back to the
	// route-type default reliability
	if routeID == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter route is required",
		})
	}

	cacheItemPath := fmt.Sprintf("risk/%s/%s", routeID, stopID)

	cachedValue, err := riskCache.Get(context.Background(), cacheItemPath)
	if err == nil {
		var assessment risk.RiskAssessment
		if err := json.Unmarshal([]byte(cachedValue), &assessment); err == nil {
			return c.JSON(assessment)
		}
	}

	assessment := riskClassifier.Classify(routeID, stopID, nil)

	assessmentJSON, _ := json.Marshal(assessment)
	riskCache.Set(context.Background(), cacheItemPath, string(assessmentJSON))

	return c.JSON(assessment)
}
