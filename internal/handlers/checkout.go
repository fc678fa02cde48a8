package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	ShippingCity    string `json:"shippingCity" binding:"required"`
	ShippingState   string `json:"shippingState" binding:"required"`
	ShippingZipCode string `json:"shippingZipCode" binding:"required"`
	ShippingPhone   string `json:"shippingPhone" binding:"required"`
	PaymentMethod   string `json:"paymentMethod" binding:"required"`
	CardNumber      string `json:"cardNumber"`
	CardExpiry      string `json:"cardExpiry"`
	CardCVV         string `json:"cardCVV"`
	UPIID           string `json:"upiId"`
}

// Checkout converts the user's cart into an immutable order plus a payment
// record. Stock verification, the stock decrement, order and payment
// insertion, and the cart clear all happen inside one transaction: any
// failure leaves cart and stock exactly as they were.
func Checkout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order/checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if problems := validateCheckoutRequest(req); len(problems) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation failed",
				"details": problems,
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		var payment models.Payment
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			cart, err := loadCart(sessCtx, db, userID)
			if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && len(cart.Items) == 0) {
				return nil, errEmptyCart
			}
			if err != nil {
				return nil, err
			}

			now := time.Now().UTC()
			orderItems := make([]models.OrderItem, 0, len(cart.Items))
			total := 0.0

			for _, item := range cart.Items {
				var product models.Product
				err := db.Collection("products").FindOne(sessCtx, bson.M{"_id": item.ProductID}).Decode(&product)
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil, productNotFoundError{ProductID: item.ProductID}
				}
				if err != nil {
					return nil, err
				}

				// Atomic decrement-if-enough. A concurrent checkout that
				// drained the stock makes the filter miss, aborting the
				// whole transaction; stock can never go negative.
				res, err := db.Collection("products").UpdateOne(sessCtx,
					bson.M{"_id": item.ProductID, "stock": bson.M{"$gte": item.Quantity}},
					bson.M{"$inc": bson.M{"stock": -item.Quantity}},
				)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: item.ProductID,
						Available: product.Stock,
						Requested: item.Quantity,
					}
				}

				// The customer pays the cart snapshot price, not the live
				// catalog price.
				orderItems = append(orderItems, models.OrderItem{
					ProductID: item.ProductID,
					Name:      product.Name,
					Price:     item.Price,
					Quantity:  item.Quantity,
				})
				total += item.Price * float64(item.Quantity)
			}

			order = models.Order{
				UserID:      userID,
				Items:       orderItems,
				TotalAmount: roundMoney(total),
				Shipping: models.ShippingAddress{
					Address: req.ShippingAddress,
					City:    req.ShippingCity,
					State:   req.ShippingState,
					ZipCode: req.ShippingZipCode,
					Phone:   req.ShippingPhone,
				},
				Status:    models.OrderStatusPending,
				OrderDate: now,
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			orderID, ok := res.InsertedID.(primitive.ObjectID)
			if !ok {
				return nil, errors.New("unexpected order id type")
			}
			order.ID = orderID

			payment = simulatePayment(orderID, req.PaymentMethod, order.TotalAmount, now)
			if _, err := db.Collection("payments").InsertOne(sessCtx, payment); err != nil {
				return nil, err
			}

			_, err = db.Collection("carts").UpdateOne(sessCtx,
				bson.M{"userId": userID},
				bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": now}},
			)
			return nil, err
		})
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}

		log.Printf("[%s] order %s created for user %s (%s)", route, order.ID.Hex(), userID.Hex(), payment.Status)
		c.JSON(http.StatusCreated, gin.H{
			"orderId":       order.ID.Hex(),
			"status":        order.Status,
			"paymentStatus": payment.Status,
		})
	}
}

func respondCheckoutError(c *gin.Context, route string, err error) {
	if errors.Is(err, errEmptyCart) {
		respondWithError(c, http.StatusBadRequest, route, errEmptyCart.Error())
		return
	}

	var stockErr outOfStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, gin.H{
			"message":    "Not enough stock available",
			"outOfStock": true,
			"productId":  stockErr.ProductID.Hex(),
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})
		return
	}

	var notFoundErr productNotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "product no longer available",
			"productId": notFoundErr.ProductID.Hex(),
		})
		return
	}

	respondWithError(c, http.StatusInternalServerError, route, "db error")
}
