package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"backend/internal/models"
)

type orderSummary struct {
	ID              string    `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	OrderDate       time.Time `json:"orderDate"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          string    `json:"status"`
	TrackingNumber  string    `json:"trackingNumber,omitempty"`
	PaymentMethod   string    `json:"paymentMethod,omitempty"`
	PaymentStatus   string    `json:"paymentStatus,omitempty"`
	ItemCount       int       `json:"itemCount"`
	ShippingAddress string    `json:"shippingAddress,omitempty"`
}

func orderNumber(id primitive.ObjectID) string {
	hex := id.Hex()
	return "ORD" + strings.ToUpper(hex[len(hex)-6:])
}

func formatShippingLine(s models.ShippingAddress) string {
	return s.Address + ", " + s.City + ", " + s.State + " " + s.ZipCode
}

// GetDashboardStats aggregates counts and revenue straight from the orders
// collection on every call; nothing here is cached or maintained
// incrementally. Empty collections yield zeros, never an error.
func GetDashboardStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/dashboard/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var (
			totalUsers, totalOrders, totalProducts  int64
			pending, processing, shipped, delivered int64
			totalRevenue                            float64
			recentOrders                            []models.Order
		)

		g, gctx := errgroup.WithContext(ctx)
		countByStatus := func(status string, out *int64) func() error {
			return func() error {
				n, err := db.Collection("orders").CountDocuments(gctx, bson.M{"status": status})
				*out = n
				return err
			}
		}
		g.Go(func() error {
			n, err := db.Collection("users").CountDocuments(gctx, bson.M{})
			totalUsers = n
			return err
		})
		g.Go(func() error {
			n, err := db.Collection("orders").CountDocuments(gctx, bson.M{})
			totalOrders = n
			return err
		})
		g.Go(func() error {
			n, err := db.Collection("products").CountDocuments(gctx, bson.M{})
			totalProducts = n
			return err
		})
		g.Go(countByStatus(models.OrderStatusPending, &pending))
		g.Go(countByStatus(models.OrderStatusProcessing, &processing))
		g.Go(countByStatus(models.OrderStatusShipped, &shipped))
		g.Go(countByStatus(models.OrderStatusDelivered, &delivered))
		g.Go(func() error {
			var err error
			totalRevenue, err = sumRevenue(gctx, db)
			return err
		})
		g.Go(func() error {
			opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}).SetLimit(10)
			cursor, err := db.Collection("orders").Find(gctx, bson.M{}, opts)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)
			return cursor.All(gctx, &recentOrders)
		})
		if err := g.Wait(); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		summaries, err := buildOrderSummaries(ctx, db, recentOrders)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalUsers":       totalUsers,
			"totalOrders":      totalOrders,
			"totalProducts":    totalProducts,
			"totalRevenue":     roundMoney(totalRevenue),
			"pendingOrders":    pending,
			"processingOrders": processing,
			"shippedOrders":    shipped,
			"deliveredOrders":  delivered,
			"recentOrders":     summaries,
		})
	}
}

// sumRevenue totals order amounts excluding cancelled orders.
func sumRevenue(ctx context.Context, db *mongo.Database) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.OrderStatusCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// GetAllOrders lists orders newest-first with optional status filter and
// page/pageSize pagination.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, pageSize, err := parsePaginationParams(c.Query("page"), c.Query("pageSize"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination parameters")
			return
		}

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "orderDate", Value: -1}}).
			SetSkip((page - 1) * pageSize).
			SetLimit(pageSize)

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		summaries, err := buildOrderSummaries(ctx, db, orders)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":      summaries,
			"totalOrders": total,
			"currentPage": page,
			"totalPages":  totalPages(total, pageSize),
		})
	}
}

// GetOrderDetails returns the full order with items, shipping snapshot,
// payment, and customer contact.
func GetOrderDetails(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
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

		var payment models.Payment
		if err := db.Collection("payments").FindOne(ctx, bson.M{"orderId": orderID}).Decode(&payment); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&user); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		items := make([]gin.H, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, gin.H{
				"productId": item.ProductID.Hex(),
				"name":      item.Name,
				"price":     item.Price,
				"quantity":  item.Quantity,
				"total":     roundMoney(item.Price * float64(item.Quantity)),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":             order.ID.Hex(),
			"orderNumber":    orderNumber(order.ID),
			"customerName":   user.Name,
			"customerEmail":  user.Email,
			"orderDate":      order.OrderDate,
			"totalAmount":    order.TotalAmount,
			"status":         order.Status,
			"trackingNumber": order.TrackingNumber,
			"shippedDate":    order.ShippedDate,
			"deliveredDate":  order.DeliveredDate,
			"shipping":       order.Shipping,
			"items":          items,
			"paymentMethod":  payment.Method,
			"paymentStatus":  payment.Status,
			"transactionId":  payment.TransactionID,
		})
	}
}

// buildOrderSummaries joins customer and payment data onto a page of orders
// with two $in lookups instead of one query per order.
func buildOrderSummaries(ctx context.Context, db *mongo.Database, orders []models.Order) ([]orderSummary, error) {
	summaries := make([]orderSummary, 0, len(orders))
	if len(orders) == 0 {
		return summaries, nil
	}

	userIDs := make([]primitive.ObjectID, 0, len(orders))
	orderIDs := make([]primitive.ObjectID, 0, len(orders))
	for _, order := range orders {
		userIDs = append(userIDs, order.UserID)
		orderIDs = append(orderIDs, order.ID)
	}

	users, err := findUsersByID(ctx, db, userIDs)
	if err != nil {
		return nil, err
	}
	payments, err := findPaymentsByOrderID(ctx, db, orderIDs)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		summary := orderSummary{
			ID:              order.ID.Hex(),
			OrderNumber:     orderNumber(order.ID),
			OrderDate:       order.OrderDate,
			TotalAmount:     order.TotalAmount,
			Status:          order.Status,
			TrackingNumber:  order.TrackingNumber,
			ItemCount:       len(order.Items),
			ShippingAddress: formatShippingLine(order.Shipping),
		}
		if user, ok := users[order.UserID]; ok {
			summary.CustomerName = user.Name
			summary.CustomerEmail = user.Email
		}
		if payment, ok := payments[order.ID]; ok {
			summary.PaymentMethod = payment.Method
			summary.PaymentStatus = payment.Status
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func findUsersByID(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func findPaymentsByOrderID(ctx context.Context, db *mongo.Database, orderIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Payment, error) {
	cursor, err := db.Collection("payments").Find(ctx, bson.M{"orderId": bson.M{"$in": orderIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}

	byOrder := make(map[primitive.ObjectID]models.Payment, len(payments))
	for _, payment := range payments {
		byOrder[payment.OrderID] = payment
	}
	return byOrder, nil
}
