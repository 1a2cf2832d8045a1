package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/estimator"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/gofiber/fiber/v2"
)

func EtaRouter(router fiber.Router) {
	router.Get("/", getEta)
}

// bucketKeyFromQuery builds the bucket key from route/stop query parameters,
// with hour and day defaulting to the current agency-local time.
func bucketKeyFromQuery(c *fiber.Ctx) (transit.BucketKey, error) {
	routeID := c.Query("route")
	stopID := c.Query("stop")

	if routeID == "" || stopID == "" {
		return transit.BucketKey{}, errors.New("Parameters route and stop are required")
	}

	hourQuery := c.Query("hour")
	dayQuery := c.Query("day")

	if hourQuery == "" && dayQuery == "" {
		return transit.BucketKeyFor(routeID, stopID, time.Now()), nil
	}

	localNow := time.Now().In(transit.GetAgencyLocation())

	hour := localNow.Hour()
	if hourQuery != "" {
		parsedHour, err := strconv.Atoi(hourQuery)
		if err != nil {
			return transit.BucketKey{}, errors.New("Parameter hour should be an integer")
		}
		hour = parsedHour
	}

	day := dayQuery
	if day == "" {
		defaultKey := transit.BucketKeyFor(routeID, stopID, localNow)
		day = string(defaultKey.DayOfWeek)
	}

	return transit.NewBucketKey(routeID, stopID, hour, day)
}

func getEta(c *fiber.Ctx) error {
	key, err := bucketKeyFromQuery(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	state, err := delayEstimator.Predict(key)
	if err != nil {
		if errors.Is(err, estimator.ErrBucketNotFound) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error":  "No delay observations recorded yet for this route, stop and time",
				"bucket": key.String(),
			})
		}

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"bucket":                  key.String(),
		"predicted_delay_seconds": state.Value,
		"sample_count":            state.SampleCount,
		"last_updated":            state.LastUpdated,
	})
}
