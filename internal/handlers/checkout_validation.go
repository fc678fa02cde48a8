package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

const (
	PaymentMethodCreditCard = "Credit Card"
	PaymentMethodDebitCard  = "Debit Card"
	PaymentMethodUPI        = "UPI"
	PaymentMethodCOD        = "COD"
)

var (
	zipCodePattern    = regexp.MustCompile(`^\d{6}$`)
	phonePattern      = regexp.MustCompile(`^\d{10}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{13,19}$`)
	cardExpiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVVPattern    = regexp.MustCompile(`^\d{3}$`)
)

// validateCheckoutRequest checks shipping and payment fields by format and
// returns one message per problem. An empty slice means the request is fine.
func validateCheckoutRequest(req checkoutRequest) []string {
	problems := make([]string, 0)

	if strings.TrimSpace(req.ShippingAddress) == "" {
		problems = append(problems, "shippingAddress is required")
	}
	if strings.TrimSpace(req.ShippingCity) == "" {
		problems = append(problems, "shippingCity is required")
	}
	if strings.TrimSpace(req.ShippingState) == "" {
		problems = append(problems, "shippingState is required")
	}
	if !zipCodePattern.MatchString(req.ShippingZipCode) {
		problems = append(problems, "shippingZipCode must be 6 digits")
	}
	if !phonePattern.MatchString(req.ShippingPhone) {
		problems = append(problems, "shippingPhone must be 10 digits")
	}

	switch req.PaymentMethod {
	case PaymentMethodCreditCard, PaymentMethodDebitCard:
		if !cardNumberPattern.MatchString(req.CardNumber) {
			problems = append(problems, "cardNumber must be 13 to 19 digits")
		}
		if !cardExpiryPattern.MatchString(req.CardExpiry) {
			problems = append(problems, "cardExpiry must be in MM/YY format")
		}
		if !cardCVVPattern.MatchString(req.CardCVV) {
			problems = append(problems, "cardCVV must be 3 digits")
		}
	case PaymentMethodUPI:
		if !strings.Contains(req.UPIID, "@") {
			problems = append(problems, "upiId is invalid")
		}
	case PaymentMethodCOD:
		// nothing to validate; captured on delivery
	default:
		problems = append(problems, "paymentMethod must be one of Credit Card, Debit Card, UPI, COD")
	}

	return problems
}

// simulatePayment stands in for a real gateway. COD stays Pending until
// delivery; card and UPI payments were already format-validated and are
// marked Success without contacting any processor. Format-valid but
// fictitious card data therefore succeeds.
func simulatePayment(orderID primitive.ObjectID, method string, amount float64, now time.Time) models.Payment {
	status := models.PaymentStatusSuccess
	if method == PaymentMethodCOD {
		status = models.PaymentStatusPending
	}

	return models.Payment{
		OrderID:       orderID,
		Method:        method,
		TransactionID: newTransactionID(),
		Status:        status,
		Amount:        amount,
		PaymentDate:   now,
	}
}

func newTransactionID() string {
	return fmt.Sprintf("TXN%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")))
}
