package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondWithError(c, http.StatusNotFound, "GET /test", "order not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != "order not found" {
		t.Fatalf("expected error message in body, got %v", body)
	}
}

func TestHandlePanicRecovers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	func() {
		defer handlePanic(c, "GET /test")
		panic("boom")
	}()

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after recovered panic, got %d", w.Code)
	}
}

func TestUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := userIDFromContext(c); ok {
		t.Fatal("expected no userId in fresh context")
	}

	userID := primitive.NewObjectID()
	c.Set("userId", userID)
	got, ok := userIDFromContext(c)
	if !ok || got != userID {
		t.Fatalf("expected %s, got %v (ok=%v)", userID.Hex(), got, ok)
	}

	c.Set("userId", "not-an-object-id")
	if _, ok := userIDFromContext(c); ok {
		t.Fatal("expected type mismatch to be rejected")
	}
}
