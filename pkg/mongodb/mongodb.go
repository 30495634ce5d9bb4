// Package mongodb owns the MongoDB connection shared by the repositories.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/logger"
)

var client *mongo.Client

// Connect dials MongoDB with retry and exponential backoff so a server
// started before the database is reachable eventually comes up healthy.
func Connect(ctx context.Context) error {
	uri := config.Get("MONGO_URI", "mongodb://localhost:27017")

	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= 5; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		c, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
		if err == nil {
			err = c.Ping(dialCtx, nil)
		}
		cancel()

		if err == nil {
			client = c
			logger.Info("mongodb connected", "attempt", attempt)
			return nil
		}

		lastErr = err
		logger.Warn("mongodb connection failed, retrying",
			"attempt", attempt, "backoff", backoff.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("mongodb: connect after retries: %w", lastErr)
}

// Client returns the connected client. Panics if Connect was not called;
// that is a programming error in the boot sequence, not a runtime condition.
func Client() *mongo.Client {
	if client == nil {
		panic("mongodb: Client called before Connect")
	}
	return client
}

// Database returns a handle to the configured application database.
func Database() *mongo.Database {
	return Client().Database(config.Get("MONGO_DB", "enventory"))
}

// Collection returns a handle to a collection in the application database.
func Collection(name string) *mongo.Collection {
	return Database().Collection(name)
}

// Disconnect closes the client connection.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction when
// MONGO_TRANSACTIONS is enabled (requires a replica set). Otherwise fn runs
// directly and callers rely on their own compensation logic.
func WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !config.MongoTransactions() {
		return fn(ctx)
	}

	sess, err := Client().StartSession()
	if err != nil {
		return fmt.Errorf("mongodb: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
