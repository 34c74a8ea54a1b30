package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

// MongoAttendanceRepository stores one document per "<childID>_<date>" key.
type MongoAttendanceRepository struct {
	coll *mongo.Collection
}

// NewMongoAttendanceRepository constructs the repository over coll.
func NewMongoAttendanceRepository(coll *mongo.Collection) *MongoAttendanceRepository {
	return &MongoAttendanceRepository{coll: coll}
}

// Get returns the record stored under key or appErrors.ErrNotFound.
func (r *MongoAttendanceRepository) Get(ctx context.Context, key string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance %s: %w", key, err)
	}
	return &record, nil
}

// Put upserts the record and always applies. Documents without a version
// count as version zero. The stored version is written back to record.Version.
func (r *MongoAttendanceRepository) Put(ctx context.Context, record *models.AttendanceRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"childId":   record.ChildID,
			"date":      record.Date,
			"present":   record.Present,
			"updatedAt": record.UpdatedAt,
			"version": bson.M{"$max": bson.A{
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$version", 0}}, 1}},
				record.Version,
			}},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"version": 1})

	var stored struct {
		Version int64 `bson:"version"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": record.Key}, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("put attendance %s: %w", record.Key, err)
	}
	record.Version = stored.Version
	return nil
}
