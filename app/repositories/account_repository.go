// Package repositories implements MongoDB persistence behind small
// interfaces so services stay testable with in-memory fakes.
package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

// AccountRepository persists admin and worker accounts.
type AccountRepository interface {
	FindByUsername(ctx context.Context, role rbac.Role, username string) (*models.Account, error)
	FindByID(ctx context.Context, role rbac.Role, id primitive.ObjectID) (*models.Account, error)
	FindByIDs(ctx context.Context, role rbac.Role, ids []primitive.ObjectID) ([]models.Account, error)
	Create(ctx context.Context, role rbac.Role, acc *models.Account) error
	AppendOrder(ctx context.Context, workerID, orderID primitive.ObjectID) error
}

type accountRepository struct{}

// NewAccountRepository returns the Mongo-backed implementation.
func NewAccountRepository() AccountRepository {
	return &accountRepository{}
}

func (r *accountRepository) coll(role rbac.Role) *mongo.Collection {
	return mongodb.Collection(models.CollectionFor(role))
}

func (r *accountRepository) FindByUsername(ctx context.Context, role rbac.Role, username string) (*models.Account, error) {
	var acc models.Account
	err := r.coll(role).FindOne(ctx, bson.M{"username": username}).Decode(&acc)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by username: %w", err)
	}
	acc.Role = role
	return &acc, nil
}

func (r *accountRepository) FindByID(ctx context.Context, role rbac.Role, id primitive.ObjectID) (*models.Account, error) {
	var acc models.Account
	err := r.coll(role).FindOne(ctx, bson.M{"_id": id}).Decode(&acc)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	acc.Role = role
	return &acc, nil
}

func (r *accountRepository) FindByIDs(ctx context.Context, role rbac.Role, ids []primitive.ObjectID) ([]models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.coll(role).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find accounts by ids: %w", err)
	}
	defer cur.Close(ctx)

	var accs []models.Account
	if err := cur.All(ctx, &accs); err != nil {
		return nil, err
	}
	for i := range accs {
		accs[i].Role = role
	}
	return accs, nil
}

func (r *accountRepository) Create(ctx context.Context, role rbac.Role, acc *models.Account) error {
	now := time.Now().UTC()
	acc.CreatedAt = now
	acc.UpdatedAt = now
	acc.Role = role

	res, err := r.coll(role).InsertOne(ctx, acc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("username %q: %w", acc.Username, models.ErrConflict)
		}
		return fmt.Errorf("create account: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		acc.ID = oid
	}
	return nil
}

// AppendOrder adds an order reference to a worker's history. A missing
// worker (e.g. an admin placing an order) is not an error.
func (r *accountRepository) AppendOrder(ctx context.Context, workerID, orderID primitive.ObjectID) error {
	_, err := r.coll(rbac.RoleWorker).UpdateOne(ctx,
		bson.M{"_id": workerID},
		bson.M{
			"$push": bson.M{"orders": orderID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("append order to worker: %w", err)
	}
	return nil
}
