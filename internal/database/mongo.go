package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo dials the cluster and verifies the connection with a ping
// before handing back the database handle. The timeout bounds both steps.
func ConnectMongo(uri, dbName string, timeout time.Duration, logger *zap.SugaredLogger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Errorw("mongo connect failed", "error", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Errorw("mongo ping failed", "error", err)
		return nil, nil, err
	}

	logger.Infow("mongo connected", "database", dbName)
	return client.Database(dbName), client, nil
}
