package mbta

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/database"
	mbtaclient "github.com/commuteguardian/commuteguardian/pkg/realtime/mbta"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// transferHubs are the high-volume interchange stations where a missed
// connection hurts the most.
var transferHubs = map[string]bool{
	"place-pktrm": true, // Park Street
	"place-dwnxg": true, // Downtown Crossing
	"place-gover": true, // Government Center
	"place-state": true, // State
	"place-north": true, // North Station
	"place-sstat": true, // South Station
	"place-haecl": true, // Haymarket
}

// surfaceRunningRoutes run at street level for part of their length and
// inherit traffic-signal delay.
var surfaceRunningRoutes = map[string]bool{
	"Green-B":  true,
	"Green-C":  true,
	"Green-D":  true,
	"Green-E":  true,
	"Mattapan": true,
}

// Importer loads static stop & route reference data into the database,
// either from the live MBTA API or from a JSON snapshot on disk.
type Importer struct {
	Client *mbtaclient.Client
}

func (i *Importer) ImportStops(source string, filePath string) (int, error) {
	var response *mbtaclient.StopsResponse

	switch source {
	case "api":
		var err error
		response, err = i.Client.GetAllStops()
		if err != nil {
			return 0, err
		}
	case "file":
		if err := readJSONFile(filePath, &response); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unknown import source %s", source)
	}

	datasource := &transit.DataSource{
		OriginalFormat: "MBTA-JSON",
		Provider:       "US-MBTA",
		Dataset:        "stops",
	}
	now := time.Now().Format(time.RFC3339)

	var stopOperations []mongo.WriteModel

	for _, stopResource := range response.Data {
		stop := &transit.Stop{
			PrimaryIdentifier: stopResource.ID,
			OtherIdentifiers: map[string]string{
				"MBTA": stopResource.ID,
			},

			CreationDateTime:     now,
			ModificationDateTime: now,

			DataSource: datasource,

			PrimaryName: stopResource.Attributes.Name,

			Status: "active",
		}

		err := copier.CopyWithOption(stop, stopResource.Attributes, copier.Option{IgnoreEmpty: true})
		if err != nil {
			log.Error().Err(err).Str("stop", stopResource.ID).Msg("Failed to map stop attributes")
			continue
		}

		stop.TransferHub = transferHubs[stopResource.ID] || transferHubs[stop.ParentStation]

		bsonRep, _ := bson.Marshal(bson.M{"$set": stop})
		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": stop.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		stopOperations = append(stopOperations, updateModel)
	}

	if len(stopOperations) > 0 {
		stopsCollection := database.GetCollection("stops")
		_, err := stopsCollection.BulkWrite(context.Background(), stopOperations, &options.BulkWriteOptions{})
		if err != nil {
			return 0, err
		}
	}

	log.Info().Int("stops", len(stopOperations)).Msg("Imported stops")

	return len(stopOperations), nil
}

func (i *Importer) ImportRoutes(source string, filePath string) (int, error) {
	var response *mbtaclient.RoutesResponse

	switch source {
	case "api":
		var err error
		response, err = i.Client.GetAllRoutes()
		if err != nil {
			return 0, err
		}
	case "file":
		if err := readJSONFile(filePath, &response); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unknown import source %s", source)
	}

	datasource := &transit.DataSource{
		OriginalFormat: "MBTA-JSON",
		Provider:       "US-MBTA",
		Dataset:        "routes",
	}
	now := time.Now().Format(time.RFC3339)

	var routeOperations []mongo.WriteModel

	for _, routeResource := range response.Data {
		route := &transit.Route{
			PrimaryIdentifier: routeResource.ID,
			OtherIdentifiers: map[string]string{
				"MBTA": routeResource.ID,
			},

			CreationDateTime:     now,
			ModificationDateTime: now,

			DataSource: datasource,

			ShortName: routeResource.Attributes.ShortName,
			LongName:  routeResource.Attributes.LongName,
			Type:      transit.RouteTypeFromGTFS(routeResource.Attributes.Type),

			Colour:     routeResource.Attributes.Color,
			TextColour: routeResource.Attributes.TextColor,

			SurfaceRunning: surfaceRunningRoutes[routeResource.ID],
		}

		bsonRep, _ := bson.Marshal(bson.M{"$set": route})
		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": route.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		routeOperations = append(routeOperations, updateModel)
	}

	if len(routeOperations) > 0 {
		routesCollection := database.GetCollection("routes")
		_, err := routesCollection.BulkWrite(context.Background(), routeOperations, &options.BulkWriteOptions{})
		if err != nil {
			return 0, err
		}
	}

	log.Info().Int("routes", len(routeOperations)).Msg("Imported routes")

	return len(routeOperations), nil
}

func readJSONFile(filePath string, target interface{}) error {
	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(fileBytes, target)
}
