package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusSuccess = "Success"
	PaymentStatusPending = "Pending"
	PaymentStatusFailed  = "Failed"
)

// Payment is 1:1 with an order (unique orderId index). Amount is always
// copied from Order.TotalAmount, never entered independently.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID       primitive.ObjectID `bson:"orderId" json:"orderId"`
	Method        string             `bson:"method" json:"method"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Status        string             `bson:"status" json:"status"`
	Amount        float64            `bson:"amount" json:"amount"`
	PaymentDate   time.Time          `bson:"paymentDate" json:"paymentDate"`
}
