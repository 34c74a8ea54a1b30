package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

// MongoChildRepository stores the roster in a MongoDB collection.
type MongoChildRepository struct {
	coll *mongo.Collection
}

// NewMongoChildRepository constructs the repository over coll.
func NewMongoChildRepository(coll *mongo.Collection) *MongoChildRepository {
	return &MongoChildRepository{coll: coll}
}

// List returns every child in insertion order.
func (r *MongoChildRepository) List(ctx context.Context) ([]models.Child, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer cursor.Close(ctx)

	children := []models.Child{}
	if err := cursor.All(ctx, &children); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	return children, nil
}

// FindByCode looks the code up as a document id first, then as a check-in code.
func (r *MongoChildRepository) FindByCode(ctx context.Context, code string) (*models.Child, error) {
	for _, filter := range []bson.M{{"_id": code}, {"checkInCode": code}} {
		var child models.Child
		err := r.coll.FindOne(ctx, filter).Decode(&child)
		if err == nil {
			return &child, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("find child by code: %w", err)
		}
	}
	return nil, appErrors.ErrNotFound
}

// Create inserts child, assigning an id when missing.
func (r *MongoChildRepository) Create(ctx context.Context, child *models.Child) error {
	if child.ID == "" {
		child.ID = primitive.NewObjectID().Hex()
	}
	if child.CreatedAt.IsZero() {
		child.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, child); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}
