// Package directory provides read-only lookups over the static reference
// collections for the risk classifier and the API.
package directory

import (
	"context"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/database"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

type MongoRouteDirectory struct{}

func (d MongoRouteDirectory) GetRoute(routeID string) *transit.Route {
	routesCollection := database.GetCollection("routes")

	var route *transit.Route
	routesCollection.FindOne(context.Background(), bson.M{"primaryidentifier": routeID}).Decode(&route)

	return route
}

func (d MongoRouteDirectory) GetAllRoutes() []*transit.Route {
	routesCollection := database.GetCollection("routes")

	cursor, err := routesCollection.Find(context.Background(), bson.M{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to query routes")
		return nil
	}

	var routes []*transit.Route
	if err := cursor.All(context.Background(), &routes); err != nil {
		log.Error().Err(err).Msg("Failed to decode routes")
		return nil
	}

	return routes
}

type MongoStopDirectory struct{}

func (d MongoStopDirectory) GetStop(stopID string) *transit.Stop {
	stopsCollection := database.GetCollection("stops")

	var stop *transit.Stop
	stopsCollection.FindOne(context.Background(), bson.M{"primaryidentifier": stopID}).Decode(&stop)

	return stop
}

func (d MongoStopDirectory) GetAllStops() []*transit.Stop {
	stopsCollection := database.GetCollection("stops")

	cursor, err := stopsCollection.Find(context.Background(), bson.M{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to query stops")
		return nil
	}

	var stops []*transit.Stop
	if err := cursor.All(context.Background(), &stops); err != nil {
		log.Error().Err(err).Msg("Failed to decode stops")
		return nil
	}

	return stops
}

type MongoAlertSource struct{}

// ActiveAlerts returns the texts of alerts currently in their validity
// window for the route.
func (s MongoAlertSource) ActiveAlerts(routeID string) []string {
	serviceAlertsCollection := database.GetCollection("service_alerts")

	now := time.Now()
	cursor, err := serviceAlertsCollection.Find(context.Background(), bson.M{
		"matchedrouteids": routeID,
		"validfrom":       bson.M{"$lt": now},
		"validuntil":      bson.M{"$gt": now},
	})
	if err != nil {
		log.Error().Err(err).Str("route", routeID).Msg("Failed to query service alerts")
		return nil
	}

	var serviceAlerts []*transit.ServiceAlert
	if err := cursor.All(context.Background(), &serviceAlerts); err != nil {
		log.Error().Err(err).Str("route", routeID).Msg("Failed to decode service alerts")
		return nil
	}

	var texts []string
	for _, serviceAlert := range serviceAlerts {
		texts = append(texts, serviceAlert.Text)
	}

	return texts
}
