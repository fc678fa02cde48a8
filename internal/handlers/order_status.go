package handlers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// orderTransitions is the closed table of legal status moves. Anything not
// listed here is rejected; Delivered and Cancelled are terminal.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
}

func canTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TrackingGenerator produces shipment tracking numbers in the
// TRK<yyyyMMdd><5-digit> format. The clock and random source are injected so
// tests can pin the output.
type TrackingGenerator func() string

func NewTrackingGenerator(now func() time.Time, intn func(int) int) TrackingGenerator {
	return func() string {
		return fmt.Sprintf("TRK%s%05d", now().UTC().Format("20060102"), 10000+intn(90000))
	}
}

func DefaultTrackingGenerator() TrackingGenerator {
	return NewTrackingGenerator(time.Now, rand.Intn)
}

// applyStatusChange computes the field updates for a status transition.
// It returns nil updates for a same-status re-application (idempotent: no
// re-timestamping, no tracking regeneration) and an invalidTransitionError
// for moves outside the table. Timestamps and the tracking number are set at
// most once, on first entry into the corresponding state.
func applyStatusChange(order models.Order, newStatus, trackingNumber string, now time.Time, generate TrackingGenerator) (bson.M, error) {
	if newStatus == order.Status {
		return nil, nil
	}
	if !canTransition(order.Status, newStatus) {
		return nil, invalidTransitionError{From: order.Status, To: newStatus}
	}

	updates := bson.M{"status": newStatus}

	if newStatus == models.OrderStatusShipped {
		if order.ShippedDate == nil {
			updates["shippedDate"] = now
		}
		if order.TrackingNumber == "" {
			if trackingNumber != "" {
				updates["trackingNumber"] = trackingNumber
			} else {
				updates["trackingNumber"] = generate()
			}
		}
	}

	if newStatus == models.OrderStatusDelivered && order.DeliveredDate == nil {
		updates["deliveredDate"] = now
	}

	return updates, nil
}

type updateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

// UpdateOrderStatus moves an order along the fulfillment state machine. The
// write is guarded by the previously read status so two concurrent admin
// updates cannot interleave.
func UpdateOrderStatus(db *mongo.Database, generate TrackingGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updates, err := applyStatusChange(order, req.Status, req.TrackingNumber, time.Now().UTC(), generate)
		if err != nil {
			var transitionErr invalidTransitionError
			if errors.As(err, &transitionErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": transitionErr.Error(),
					"from":  transitionErr.From,
					"to":    transitionErr.To,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if updates == nil {
			c.JSON(http.StatusOK, gin.H{"message": "order status unchanged", "order": order})
			return
		}

		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID, "status": order.Status},
			bson.M{"$set": updates},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusConflict, route, "order was modified concurrently")
			return
		}

		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order status updated", "order": order})
	}
}
