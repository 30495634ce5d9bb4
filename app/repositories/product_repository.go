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

// ProductRepository persists catalog products. Stock mutations go through
// DecrementStock/RestoreStock only, never through plain updates, so the
// stock invariant holds under concurrent orders.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, page, limit int64, search string) ([]models.Product, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock atomically subtracts qty from stock iff stock >= qty.
	// Returns ErrProductNotFound or ErrInsufficientStock otherwise.
	// qty must be positive; anything else is ErrValidation.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int64) error
	// RestoreStock adds qty back; the compensation for a failed order insert.
	RestoreStock(ctx context.Context, id primitive.ObjectID, qty int64) error
	CountLowStock(ctx context.Context, threshold int64) (int64, error)
}

type productRepository struct{}

// NewProductRepository returns the Mongo-backed implementation.
func NewProductRepository() ProductRepository {
	return &productRepository{}
}

func (r *productRepository) coll() *mongo.Collection {
	return mongodb.Collection(models.CollProducts)
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.coll().InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product %q: %w", p.Name, models.ErrConflict)
		}
		return fmt.Errorf("create product: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.coll().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}
	defer cur.Close(ctx)

	var ps []models.Product
	if err := cur.All(ctx, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// List returns a page of products, newest first. A non-empty search filters
// by case-insensitive substring match on the name.
func (r *productRepository) List(ctx context.Context, page, limit int64, search string) ([]models.Product, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}

	total, err := r.coll().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	var ps []models.Product
	if err := cur.All(ctx, &ps); err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

// Delete removes the product document. Orders referencing it are left
// untouched.
func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("decrement stock by %d: %w", qty, models.ErrValidation)
	}

	res, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Zero matches: either the product is gone or stock is short.
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return models.ErrInsufficientStock
}

func (r *productRepository) RestoreStock(ctx context.Context, id primitive.ObjectID, qty int64) error {
	_, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func (r *productRepository) CountLowStock(ctx context.Context, threshold int64) (int64, error) {
	n, err := r.coll().CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": threshold}})
	if err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}
