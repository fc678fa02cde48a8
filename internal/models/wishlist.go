package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Wishlist keeps the product ids a user saved for later. Adding a product to
// the cart removes it from here as cross-cutting cleanup.
type Wishlist struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `bson:"userId" json:"userId"`
	ProductIDs []primitive.ObjectID `bson:"productIds" json:"productIds"`
}
