package routes

import (
	"sort"
	"strconv"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/directory"
	mbtaclient "github.com/commuteguardian/commuteguardian/pkg/realtime/mbta"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/gofiber/fiber/v2"
)

type upcomingDeparture struct {
	RouteID     string `json:"route_id"`
	TripID      string `json:"trip_id"`
	DirectionID int    `json:"direction_id"`

	ArrivalTime   *time.Time `json:"arrival_time"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`

	// historical EWMA for the stop's current bucket, absent when no
	// observations exist yet
	PredictedDelaySeconds *float64 `json:"predicted_delay_seconds,omitempty"`
}

func getStopDepartures(c *fiber.Ctx) error {
	stopIdentifier := c.Params("identifier")
	routeID := c.Query("route")

	count, err := strconv.Atoi(c.Query("count", "10"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter count should be an integer",
		})
	}

	if routeID == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter route is required",
		})
	}

	stop := directory.MongoStopDirectory{}.GetStop(stopIdentifier)
	if stop == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}

	predictions, err := mbtaclient.NewClient().GetPredictions(routeID)
	if err != nil {
		c.SendStatus(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	departures := []upcomingDeparture{}

	for _, prediction := range predictions {
		if prediction.StopID != stopIdentifier && prediction.StopID != stop.ParentStation {
			continue
		}
		if prediction.ArrivalTime == nil {
			continue
		}

		departure := upcomingDeparture{
			RouteID:     prediction.RouteID,
			TripID:      prediction.TripID,
			DirectionID: prediction.DirectionID,

			ArrivalTime:   prediction.ArrivalTime,
			ScheduledTime: prediction.ScheduledTime,
		}

		bucketKey := transit.BucketKeyFor(prediction.RouteID, stopIdentifier, *prediction.ArrivalTime)
		if state, err := delayEstimator.Predict(bucketKey); err == nil {
			predictedDelay := state.Value
			departure.PredictedDelaySeconds = &predictedDelay
		}

		departures = append(departures, departure)
	}

	sort.Slice(departures, func(i, j int) bool {
		return departures[i].ArrivalTime.Before(*departures[j].ArrivalTime)
	})

	if len(departures) > count {
		departures = departures[:count]
	}

	return c.JSON(departures)
}
