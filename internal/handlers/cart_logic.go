package handlers

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// firstAddFilter matches the user's cart only while it does not yet hold an
// entry for productID. Using it on the first-add push makes the push itself
// refuse to create a duplicate line when two adds race past findCartItem.
func firstAddFilter(userID, productID primitive.ObjectID) bson.M {
	return bson.M{
		"userId":          userID,
		"items.productId": bson.M{"$ne": productID},
	}
}

// findCartItem returns the index of the entry for productID, or -1. The
// merge-on-add rule guarantees there is at most one such entry.
func findCartItem(items []models.CartItem, productID primitive.ObjectID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func cartTotal(items []models.CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return roundMoney(total)
}

func cartItemsCount(items []models.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// validateCartQuantity applies the stock ceiling used by both add and
// update: the resulting per-product quantity may not exceed current stock.
// The check is advisory over time (stock can change before checkout); the
// checkout transaction re-verifies it authoritatively.
func validateCartQuantity(productID primitive.ObjectID, existing, requested, stock int) error {
	if stock <= 0 {
		return outOfStockError{ProductID: productID, Available: 0, Requested: requested}
	}
	if existing+requested > stock {
		return outOfStockError{ProductID: productID, Available: stock, Requested: existing + requested}
	}
	return nil
}
