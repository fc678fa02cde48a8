package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Transitions between them are enforced by the fulfillment
// state machine in the handlers package; nothing else writes the field.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// OrderItem is an immutable copy of a cart line taken at checkout. Price and
// quantity stay frozen for audit even if the product changes later.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// ShippingAddress is snapshotted onto the order at checkout, never a
// reference to the user's address book.
type ShippingAddress struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Phone   string `bson:"phone" json:"phone"`
}

// Order is created once at checkout and afterwards mutated only through
// status-field updates (status, trackingNumber, shippedDate, deliveredDate).
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Items          []OrderItem        `bson:"items" json:"items"`
	TotalAmount    float64            `bson:"totalAmount" json:"totalAmount"`
	Shipping       ShippingAddress    `bson:"shipping" json:"shipping"`
	Status         string             `bson:"status" json:"status"`
	TrackingNumber string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	OrderDate      time.Time          `bson:"orderDate" json:"orderDate"`
	ShippedDate    *time.Time         `bson:"shippedDate,omitempty" json:"shippedDate,omitempty"`
	DeliveredDate  *time.Time         `bson:"deliveredDate,omitempty" json:"deliveredDate,omitempty"`
}
