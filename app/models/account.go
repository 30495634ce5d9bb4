// Package models defines the persisted documents and domain errors.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

// Collection names. Admins and workers live in separate collections; the
// role is implied by where the document lives, not stored on it.
const (
	CollAdmins   = "admins"
	CollWorkers  = "workers"
	CollProducts = "products"
	CollOrders   = "orders"
	CollFailed   = "failed_jobs"
)

// Account is a login-capable identity: an admin or a worker. Workers carry
// the list of orders they placed; for admins the slice stays empty.
type Account struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Password string             `bson:"password" json:"-"`

	// Role is derived from the collection the document was read from and
	// never persisted.
	Role rbac.Role `bson:"-" json:"role"`

	Orders []primitive.ObjectID `bson:"orders,omitempty" json:"orders,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Principal returns the identity snapshot stored in sessions and tokens.
func (a Account) Principal() rbac.Principal {
	return rbac.Principal{
		ID:       a.ID.Hex(),
		Username: a.Username,
		Role:     a.Role,
	}
}

// CollectionFor maps a role to its backing collection.
func CollectionFor(role rbac.Role) string {
	if role == rbac.RoleAdmin {
		return CollAdmins
	}
	return CollWorkers
}
