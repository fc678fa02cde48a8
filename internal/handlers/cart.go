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
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type cartItemView struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand,omitempty"`
	ImagePath string  `json:"imagePath,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	LineTotal float64 `json:"lineTotal"`
}

type cartResponse struct {
	Items       []cartItemView `json:"items"`
	TotalAmount float64        `json:"totalAmount"`
}

func emptyCartResponse() cartResponse {
	return cartResponse{Items: []cartItemView{}, TotalAmount: 0}
}

// GetCart returns the user's cart with product details joined for display,
// or the empty-cart shape. It never fails on a missing cart.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, emptyCartResponse())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondCart(c, ctx, db, route, cart)
	}
}

// AddToCart merges the requested quantity into the cart under the stock
// ceiling, snapshotting the unit price on first add. The product also leaves
// the user's wishlist, if it was there.
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/add"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart, err := loadCart(ctx, db, userID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		existingIdx := findCartItem(cart.Items, productID)
		existingQty := 0
		if existingIdx >= 0 {
			existingQty = cart.Items[existingIdx].Quantity
		}

		if err := validateCartQuantity(productID, existingQty, quantity, product.Stock); err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"message":    "Not enough stock available",
					"outOfStock": true,
					"available":  stockErr.Available,
					"requested":  stockErr.Requested,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now().UTC()
		if existingIdx >= 0 {
			_, err = db.Collection("carts").UpdateOne(ctx,
				bson.M{"userId": userID, "items.productId": productID},
				bson.M{
					"$inc": bson.M{"items.$.quantity": quantity},
					"$set": bson.M{"updatedAt": now},
				},
			)
		} else {
			item := models.CartItem{
				ProductID: productID,
				Quantity:  quantity,
				Price:     roundMoney(product.Price),
			}
			// The $ne guard keeps two concurrent first adds from pushing the
			// same product twice: the loser misses the filter, upserts into
			// the unique userId index, and gets retried as a quantity merge.
			_, err = db.Collection("carts").UpdateOne(ctx,
				firstAddFilter(userID, productID),
				bson.M{
					"$push": bson.M{"items": item},
					"$set":  bson.M{"updatedAt": now},
				},
				options.Update().SetUpsert(true),
			)
			if mongo.IsDuplicateKeyError(err) {
				_, err = db.Collection("carts").UpdateOne(ctx,
					bson.M{"userId": userID, "items.productId": productID},
					bson.M{
						"$inc": bson.M{"items.$.quantity": quantity},
						"$set": bson.M{"updatedAt": now},
					},
				)
			}
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Cross-cutting cleanup, not part of the cart contract: a missing
		// wishlist or entry is fine.
		if _, err := db.Collection("wishlists").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{"$pull": bson.M{"productIds": productID}},
		); err != nil {
			log.Printf("[%s] wishlist cleanup skipped: %v", route, err)
		}

		reloaded, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		respondCart(c, ctx, db, route, reloaded)
	}
}

// RemoveFromCart is idempotent: removing an absent item is a no-op.
func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/remove"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err = db.Collection("carts").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$pull": bson.M{"items": bson.M{"productId": productID}},
				"$set":  bson.M{"updatedAt": time.Now().UTC()},
			},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart, err := loadCart(ctx, db, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, emptyCartResponse())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		respondCart(c, ctx, db, route, cart)
	}
}

// UpdateQuantity sets an item's quantity directly; zero or negative removes
// it. Unlike the add path's merge, this replaces the quantity, but the same
// stock ceiling applies.
func UpdateQuantity(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/update"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req updateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, errCartItemMissing.Error())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if findCartItem(cart.Items, productID) < 0 {
			respondWithError(c, http.StatusNotFound, route, errCartItemMissing.Error())
			return
		}

		now := time.Now().UTC()
		if req.Quantity <= 0 {
			_, err = db.Collection("carts").UpdateOne(ctx,
				bson.M{"userId": userID},
				bson.M{
					"$pull": bson.M{"items": bson.M{"productId": productID}},
					"$set":  bson.M{"updatedAt": now},
				},
			)
		} else {
			var product models.Product
			err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
			if errors.Is(err, mongo.ErrNoDocuments) {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			if err := validateCartQuantity(productID, 0, req.Quantity, product.Stock); err != nil {
				var stockErr outOfStockError
				if errors.As(err, &stockErr) {
					c.JSON(http.StatusBadRequest, gin.H{
						"message":    "Not enough stock available",
						"outOfStock": true,
						"available":  stockErr.Available,
						"requested":  stockErr.Requested,
					})
					return
				}
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			_, err = db.Collection("carts").UpdateOne(ctx,
				bson.M{"userId": userID, "items.productId": productID},
				bson.M{
					"$set": bson.M{"items.$.quantity": req.Quantity, "updatedAt": now},
				},
			)
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		reloaded, err := loadCart(ctx, db, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, emptyCartResponse())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		respondCart(c, ctx, db, route, reloaded)
	}
}

// GetCartCount reports the summed quantity for badge display. Not an
// invariant, just a convenience read.
func GetCartCount(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart/count"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, gin.H{"count": 0})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": cartItemsCount(cart.Items)})
	}
}

func loadCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	return cart, err
}

func respondCart(c *gin.Context, ctx context.Context, db *mongo.Database, route string, cart models.Cart) {
	response, err := buildCartResponse(ctx, db, cart)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, route, "db error")
		return
	}
	c.JSON(http.StatusOK, response)
}

// buildCartResponse joins product display fields onto the cart items. The
// price shown is the cart snapshot, not the live catalog price.
func buildCartResponse(ctx context.Context, db *mongo.Database, cart models.Cart) (cartResponse, error) {
	if len(cart.Items) == 0 {
		return emptyCartResponse(), nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return cartResponse{}, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return cartResponse{}, err
	}

	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return assembleCartResponse(cart.Items, byID), nil
}

func assembleCartResponse(items []models.CartItem, products map[primitive.ObjectID]models.Product) cartResponse {
	views := make([]cartItemView, 0, len(items))
	for _, item := range items {
		view := cartItemView{
			ProductID: item.ProductID.Hex(),
			Price:     item.Price,
			Quantity:  item.Quantity,
			LineTotal: roundMoney(item.Price * float64(item.Quantity)),
		}
		if p, ok := products[item.ProductID]; ok {
			view.Name = p.Name
			view.Brand = p.Brand
			view.ImagePath = p.ImagePath
			view.Stock = p.Stock
		}
		views = append(views, view)
	}
	return cartResponse{Items: views, TotalAmount: cartTotal(items)}
}
