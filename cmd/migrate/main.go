package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-ledger-api/migrations"
	"github.com/noah-isme/attendance-ledger-api/pkg/config"
	"github.com/noah-isme/attendance-ledger-api/pkg/database"
	"github.com/noah-isme/attendance-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		migrateMongo(ctx, cfg, logr)
	default:
		migratePostgres(ctx, cfg, logr)
	}
}

func migratePostgres(ctx context.Context, cfg *config.Config, logr *zap.Logger) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	scripts, err := migrations.Scripts()
	if err != nil {
		logr.Fatal("load migrations", zap.Error(err))
	}
	for _, script := range scripts {
		if _, err := db.ExecContext(ctx, script.SQL); err != nil {
			logr.Fatal("apply migration", zap.String("file", script.Name), zap.Error(err))
		}
		logr.Info("applied migration", zap.String("file", script.Name))
	}
}

func migrateMongo(ctx context.Context, cfg *config.Config, logr *zap.Logger) {
	client, db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		logr.Fatal("connect mongo", zap.Error(err))
	}
	defer client.Disconnect(context.Background()) //nolint:errcheck

	indexes := map[string]mongo.IndexModel{
		"children": {
			Keys:    bson.D{{Key: "checkInCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		"attendance": {
			Keys: bson.D{{Key: "date", Value: 1}},
		},
		"payments": {
			Keys: bson.D{{Key: "childId", Value: 1}, {Key: "period", Value: 1}},
		},
	}
	for collection, model := range indexes {
		name, err := db.Collection(collection).Indexes().CreateOne(ctx, model)
		if err != nil {
			logr.Fatal("create index", zap.String("collection", collection), zap.Error(err))
		}
		logr.Info("ensured index", zap.String("collection", collection), zap.String("index", name))
	}
}
