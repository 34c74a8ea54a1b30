package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/attendance-ledger-api/pkg/config"
)

// NewMongo connects to MongoDB, verifies the primary is reachable and returns
// the configured database handle alongside its client.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
