package database

import (
	"context"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "commute-guardian"

func Connect() error {
	connectionString := defaultMongoConnectionString
	dbName := defaultMongoDatabase

	env := util.GetEnvironmentVariables()

	if env["COMMUTE_GUARDIAN_MONGODB_CONNECTION"] != "" {
		connectionString = env["COMMUTE_GUARDIAN_MONGODB_CONNECTION"]
	}

	if env["COMMUTE_GUARDIAN_MONGODB_DATABASE"] != "" {
		dbName = env["COMMUTE_GUARDIAN_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	database := client.Database(dbName)

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: database,
	}

	err = client.Ping(context.Background(), nil)
	if err != nil {
		return err
	}

	createIndexes()

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}
