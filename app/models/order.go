package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order records a stock deduction against a product, placed by a worker or
// an admin on behalf of a customer. Product and account references are by
// ID only; deleting the referenced documents leaves the order intact.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	PlacedBy        primitive.ObjectID `bson:"placedBy" json:"placedBy"`
	Quantity        int64              `bson:"quantity" json:"quantity"`
	UnitPrice       float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerAddress string             `bson:"address,omitempty" json:"address,omitempty"`
	Contact         string             `bson:"contact,omitempty" json:"contact,omitempty"`
	COD             bool               `bson:"cod" json:"cod"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Delivered       bool               `bson:"delivered" json:"delivered"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrderInput is the validated payload for placing an order.
type OrderInput struct {
	ProductID       string `json:"productId" validate:"required"`
	Quantity        int64  `json:"quantity" validate:"required,integer,gte=1"`
	CustomerName    string `json:"customerName" validate:"required,min=2,max=120"`
	CustomerAddress string `json:"address" validate:"nullable,max=500"`
	Contact         string `json:"contact" validate:"nullable,max=50"`
	COD             bool   `json:"cod"`
	Description     string `json:"description" validate:"nullable,max=2000"`
}

// OrderView is an order enriched with display fields resolved at read time.
// ProductName and PlacedByName fall back to empty strings when the
// referenced documents no longer exist.
type OrderView struct {
	Order        `bson:",inline"`
	ProductName  string `json:"productName,omitempty"`
	ProductSize  string `json:"productSize,omitempty"`
	ProductColor string `json:"productColor,omitempty"`
	ProductImage string `json:"productImage,omitempty"`
	PlacedByName string `json:"placedByName,omitempty"`
}
