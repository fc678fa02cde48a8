package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("could not sign token: %v", err)
	}
	return signed
}

func runUserAuth(t *testing.T, authorization string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/cart", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}

	UserAuth(testSecret)(c)
	return w, c
}

func TestUserAuthMissingToken(t *testing.T) {
	w, _ := runUserAuth(t, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}
}

func TestUserAuthMalformedHeader(t *testing.T) {
	w, _ := runUserAuth(t, "Token abc")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", w.Code)
	}
}

func TestUserAuthInjectsUserID(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signToken(t, jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	w, c := runUserAuth(t, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected request to pass, got %d", w.Code)
	}

	value, exists := c.Get("userId")
	if !exists {
		t.Fatal("expected userId in context")
	}
	if got, ok := value.(primitive.ObjectID); !ok || got != userID {
		t.Fatalf("expected userId %s, got %v", userID.Hex(), value)
	}
}

func TestUserAuthRejectsMissingClaim(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w, _ := runUserAuth(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing userId claim, got %d", w.Code)
	}
}

func TestAdminAuthMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/api/orders", nil)

	AdminAuth(testSecret)(c)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}
}

func TestAdminAuthAllowsAdminRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "admin",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/api/orders", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	AdminAuth(testSecret)(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected admin token to pass, got %d", w.Code)
	}
	if _, exists := c.Get("claims"); !exists {
		t.Fatal("expected claims in context")
	}
}

func TestAdminAuthRejectsCustomerRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "customer",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/api/orders", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	AdminAuth(testSecret)(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role, got %d", w.Code)
	}
}
