package handlers

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func validCheckoutRequest() checkoutRequest {
	return checkoutRequest{
		ShippingAddress: "42 Market Street",
		ShippingCity:    "Pune",
		ShippingState:   "MH",
		ShippingZipCode: "411001",
		ShippingPhone:   "9876543210",
		PaymentMethod:   PaymentMethodCreditCard,
		CardNumber:      "4111111111111111",
		CardExpiry:      "12/27",
		CardCVV:         "123",
	}
}

func TestValidateCheckoutRequestAcceptsValidCard(t *testing.T) {
	if problems := validateCheckoutRequest(validCheckoutRequest()); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidateCheckoutRequestShippingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*checkoutRequest)
		want   string
	}{
		{"blank address", func(r *checkoutRequest) { r.ShippingAddress = "  " }, "shippingAddress"},
		{"blank city", func(r *checkoutRequest) { r.ShippingCity = "" }, "shippingCity"},
		{"blank state", func(r *checkoutRequest) { r.ShippingState = "" }, "shippingState"},
		{"short zip", func(r *checkoutRequest) { r.ShippingZipCode = "12345" }, "shippingZipCode"},
		{"alpha zip", func(r *checkoutRequest) { r.ShippingZipCode = "41100a" }, "shippingZipCode"},
		{"short phone", func(r *checkoutRequest) { r.ShippingPhone = "12345" }, "shippingPhone"},
	}

	for _, tt := range tests {
		req := validCheckoutRequest()
		tt.mutate(&req)
		problems := validateCheckoutRequest(req)
		if len(problems) != 1 || !strings.Contains(problems[0], tt.want) {
			t.Fatalf("%s: expected one problem mentioning %s, got %v", tt.name, tt.want, problems)
		}
	}
}

func TestValidateCheckoutRequestCardFields(t *testing.T) {
	req := validCheckoutRequest()
	req.CardNumber = "1234"
	req.CardExpiry = "13-25"
	req.CardCVV = "12"

	problems := validateCheckoutRequest(req)
	if len(problems) != 3 {
		t.Fatalf("expected 3 card problems, got %v", problems)
	}
}

func TestValidateCheckoutRequestUPI(t *testing.T) {
	req := validCheckoutRequest()
	req.PaymentMethod = PaymentMethodUPI
	req.CardNumber, req.CardExpiry, req.CardCVV = "", "", ""

	req.UPIID = "someone-at-bank"
	if problems := validateCheckoutRequest(req); len(problems) != 1 {
		t.Fatalf("upi id without @ must fail, got %v", problems)
	}

	req.UPIID = "someone@bank"
	if problems := validateCheckoutRequest(req); len(problems) != 0 {
		t.Fatalf("expected valid upi request, got %v", problems)
	}
}

func TestValidateCheckoutRequestCODSkipsPaymentFields(t *testing.T) {
	req := validCheckoutRequest()
	req.PaymentMethod = PaymentMethodCOD
	req.CardNumber, req.CardExpiry, req.CardCVV, req.UPIID = "", "", "", ""

	if problems := validateCheckoutRequest(req); len(problems) != 0 {
		t.Fatalf("COD must not require payment fields, got %v", problems)
	}
}

func TestValidateCheckoutRequestUnknownMethod(t *testing.T) {
	req := validCheckoutRequest()
	req.PaymentMethod = "Barter"

	problems := validateCheckoutRequest(req)
	if len(problems) != 1 || !strings.Contains(problems[0], "paymentMethod") {
		t.Fatalf("expected payment method problem, got %v", problems)
	}
}

func TestSimulatePaymentCODStaysPending(t *testing.T) {
	orderID := primitive.NewObjectID()
	now := time.Now().UTC()

	payment := simulatePayment(orderID, PaymentMethodCOD, 499.5, now)
	if payment.Status != models.PaymentStatusPending {
		t.Fatalf("COD payment must stay Pending, got %s", payment.Status)
	}
	if payment.Amount != 499.5 {
		t.Fatalf("amount must be copied from the order total, got %v", payment.Amount)
	}
	if payment.OrderID != orderID {
		t.Fatal("payment must reference the order")
	}
}

func TestSimulatePaymentCardSucceeds(t *testing.T) {
	payment := simulatePayment(primitive.NewObjectID(), PaymentMethodDebitCard, 100, time.Now().UTC())
	if payment.Status != models.PaymentStatusSuccess {
		t.Fatalf("format-validated card payment must be Success, got %s", payment.Status)
	}
	if !strings.HasPrefix(payment.TransactionID, "TXN") {
		t.Fatalf("transaction id must carry the TXN prefix, got %s", payment.TransactionID)
	}
}

func TestNewTransactionIDUnique(t *testing.T) {
	a := newTransactionID()
	b := newTransactionID()
	if a == b {
		t.Fatalf("expected distinct transaction ids, got %s twice", a)
	}
}
