package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createStopsIndexes()
	createRoutesIndexes()
	createServiceAlertsIndexes()
}

func createStopsIndexes() {
	stopsCollection := GetCollection("stops")
	stopsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "parentstation", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := stopsCollection.Indexes().CreateMany(context.Background(), stopsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createRoutesIndexes() {
	routesCollection := GetCollection("routes")
	routesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := routesCollection.Indexes().CreateMany(context.Background(), routesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createServiceAlertsIndexes() {
	serviceAlertsCollection := GetCollection("service_alerts")
	serviceAlertsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "matchedrouteids", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "validuntil", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := serviceAlertsCollection.Indexes().CreateMany(context.Background(), serviceAlertsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
