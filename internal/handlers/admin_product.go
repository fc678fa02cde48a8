package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type updateStockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

type updatePriceRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

// UpdateProductStock replaces a product's stock count. Checkout decrements
// are the only other writer of this field.
func UpdateProductStock(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id/stock"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "stock is required")
			return
		}
		if *req.Stock < 0 {
			respondWithError(c, http.StatusBadRequest, route, "stock must not be negative")
			return
		}

		product, err := updateProductField(c.Request.Context(), db, productID, bson.M{"stock": *req.Stock})
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "stock updated", "product": product})
	}
}

func UpdateProductPrice(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id/price"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updatePriceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "price is required")
			return
		}
		if *req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
			return
		}

		product, err := updateProductField(c.Request.Context(), db, productID, bson.M{"price": roundMoney(*req.Price)})
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "price updated", "product": product})
	}
}

func updateProductField(parent context.Context, db *mongo.Database, productID primitive.ObjectID, fields bson.M) (models.Product, error) {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	res, err := db.Collection("products").UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": fields})
	if err != nil {
		return models.Product{}, err
	}
	if res.MatchedCount == 0 {
		return models.Product{}, mongo.ErrNoDocuments
	}

	var product models.Product
	err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	return product, err
}
