package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
)

type paymentDocument struct {
	ID        string               `bson:"_id"`
	ChildID   string               `bson:"childId"`
	Period    string               `bson:"period"`
	Amount    primitive.Decimal128 `bson:"amount"`
	CreatedAt time.Time            `bson:"createdAt"`
}

// MongoPaymentRepository appends payment entries to a MongoDB collection.
type MongoPaymentRepository struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepository constructs the repository over coll.
func NewMongoPaymentRepository(coll *mongo.Collection) *MongoPaymentRepository {
	return &MongoPaymentRepository{coll: coll}
}

// Add inserts a new payment and assigns its identifier.
func (r *MongoPaymentRepository) Add(ctx context.Context, payment *models.PaymentRecord) error {
	amount, err := primitive.ParseDecimal128(payment.Amount.String())
	if err != nil {
		return fmt.Errorf("encode amount %s: %w", payment.Amount, err)
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	doc := paymentDocument{
		ID:        primitive.NewObjectID().Hex(),
		ChildID:   payment.ChildID,
		Period:    payment.Period,
		Amount:    amount,
		CreatedAt: payment.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("add payment: %w", err)
	}
	payment.ID = doc.ID
	return nil
}
