package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog item. Stock is the single source of truth for
// availability and is only ever changed through conditional updates.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int64              `bson:"stock" json:"stock"`
	Size        string             `bson:"size,omitempty" json:"size,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProductInput is the validated payload for creating a product.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description string  `json:"description" validate:"nullable,max=2000"`
	Price       float64 `json:"price" validate:"required,numeric,gt=0"`
	Stock       int64   `json:"stock" validate:"integer,gte=0"`
	Size        string  `json:"size" validate:"nullable,max=50"`
	Color       string  `json:"color" validate:"nullable,max=50"`
}
