// Package indexes declares the MongoDB indexes the application relies on.
package indexes

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
)

// Ensure creates every index idempotently. Safe to run at each boot.
func Ensure(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		models.CollAdmins: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		models.CollWorkers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		models.CollProducts: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		models.CollOrders: {
			{Keys: bson.D{{Key: "placedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "customerName", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for coll, ims := range specs {
		if _, err := mongodb.Collection(coll).Indexes().CreateMany(ctx, ims); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}

	logger.Info("indexes ensured")
	return nil
}
