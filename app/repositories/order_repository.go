package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
)

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByPlacer(ctx context.Context, placedBy primitive.ObjectID, page, limit int64, search string) ([]models.Order, int64, error)
	ListAll(ctx context.Context, page, limit int64, search string) ([]models.Order, int64, error)
	// SetDelivered is idempotent: marking a delivered order delivered again
	// succeeds without change.
	SetDelivered(ctx context.Context, id primitive.ObjectID, delivered bool) (*models.Order, error)
	// Delete removes the order without touching product stock.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type orderRepository struct{}

// NewOrderRepository returns the Mongo-backed implementation.
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

func (r *orderRepository) coll() *mongo.Collection {
	return mongodb.Collection(models.CollOrders)
}

func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := r.coll().InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) list(ctx context.Context, filter bson.M, page, limit int64) ([]models.Order, int64, error) {
	total, err := r.coll().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func withSearch(filter bson.M, search string) bson.M {
	if search != "" {
		filter["customerName"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	return filter
}

func (r *orderRepository) ListByPlacer(ctx context.Context, placedBy primitive.ObjectID, page, limit int64, search string) ([]models.Order, int64, error) {
	return r.list(ctx, withSearch(bson.M{"placedBy": placedBy}, search), page, limit)
}

func (r *orderRepository) ListAll(ctx context.Context, page, limit int64, search string) ([]models.Order, int64, error) {
	return r.list(ctx, withSearch(bson.M{}, search), page, limit)
}

func (r *orderRepository) SetDelivered(ctx context.Context, id primitive.ObjectID, delivered bool) (*models.Order, error) {
	after := options.After
	var o models.Order
	err := r.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"delivered": delivered, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set delivered: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}
