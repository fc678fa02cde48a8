package handlers

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"backend/internal/models"
)

var trackingPattern = regexp.MustCompile(`^TRK\d{8}\d{5}$`)

func fixedTrackingGenerator(value string) TrackingGenerator {
	return func() string { return value }
}

func TestCanTransitionTable(t *testing.T) {
	allowed := [][2]string{
		{models.OrderStatusPending, models.OrderStatusProcessing},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusProcessing, models.OrderStatusShipped},
		{models.OrderStatusProcessing, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
	}
	for _, pair := range allowed {
		if !canTransition(pair[0], pair[1]) {
			t.Fatalf("%s -> %s should be legal", pair[0], pair[1])
		}
	}

	forbidden := [][2]string{
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusCancelled, models.OrderStatusProcessing},
		{models.OrderStatusPending, "Lost"},
	}
	for _, pair := range forbidden {
		if canTransition(pair[0], pair[1]) {
			t.Fatalf("%s -> %s must be rejected", pair[0], pair[1])
		}
	}
}

func TestApplyStatusChangeRejectsIllegalMove(t *testing.T) {
	order := models.Order{Status: models.OrderStatusDelivered}
	_, err := applyStatusChange(order, models.OrderStatusPending, "", time.Now(), fixedTrackingGenerator("TRK2026010199999"))

	var transitionErr invalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected invalidTransitionError, got %v", err)
	}
	if transitionErr.From != models.OrderStatusDelivered || transitionErr.To != models.OrderStatusPending {
		t.Fatalf("unexpected error detail: %+v", transitionErr)
	}
}

func TestApplyStatusChangeSameStatusIsNoOp(t *testing.T) {
	shipped := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	order := models.Order{
		Status:         models.OrderStatusShipped,
		ShippedDate:    &shipped,
		TrackingNumber: "TRK2026080112345",
	}

	updates, err := applyStatusChange(order, models.OrderStatusShipped, "", time.Now(), fixedTrackingGenerator("TRK9999999999999"))
	if err != nil {
		t.Fatalf("same-status re-application must not fail: %v", err)
	}
	if updates != nil {
		t.Fatalf("same-status re-application must not produce updates, got %v", updates)
	}
}

func TestApplyStatusChangeIntoShippedAssignsTrackingOnce(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	order := models.Order{Status: models.OrderStatusProcessing}

	updates, err := applyStatusChange(order, models.OrderStatusShipped, "", now, fixedTrackingGenerator("TRK2026082954321"))
	if err != nil {
		t.Fatalf("processing -> shipped must be legal: %v", err)
	}
	if updates["status"] != models.OrderStatusShipped {
		t.Fatalf("expected status update, got %v", updates)
	}
	if updates["shippedDate"] != now {
		t.Fatalf("expected shippedDate to be set, got %v", updates["shippedDate"])
	}
	if updates["trackingNumber"] != "TRK2026082954321" {
		t.Fatalf("expected generated tracking number, got %v", updates["trackingNumber"])
	}
}

func TestApplyStatusChangePrefersCallerTrackingNumber(t *testing.T) {
	order := models.Order{Status: models.OrderStatusProcessing}

	updates, err := applyStatusChange(order, models.OrderStatusShipped, "TRK2026082900001", time.Now(), fixedTrackingGenerator("TRK2026082999999"))
	if err != nil {
		t.Fatal(err)
	}
	if updates["trackingNumber"] != "TRK2026082900001" {
		t.Fatalf("caller-supplied tracking number must win, got %v", updates["trackingNumber"])
	}
}

func TestApplyStatusChangeKeepsExistingTrackingAndDate(t *testing.T) {
	// An order that already shipped once keeps its tracking number and date
	// even if it somehow re-enters Shipped via a fresh transition.
	shipped := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	order := models.Order{
		Status:         models.OrderStatusProcessing,
		ShippedDate:    &shipped,
		TrackingNumber: "TRK2026070110000",
	}

	updates, err := applyStatusChange(order, models.OrderStatusShipped, "", time.Now(), fixedTrackingGenerator("TRK2026082999999"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := updates["shippedDate"]; ok {
		t.Fatal("shippedDate must be set at most once")
	}
	if _, ok := updates["trackingNumber"]; ok {
		t.Fatal("trackingNumber must never be regenerated")
	}
}

func TestApplyStatusChangeIntoDeliveredSetsDateOnce(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	order := models.Order{Status: models.OrderStatusShipped}

	updates, err := applyStatusChange(order, models.OrderStatusDelivered, "", now, fixedTrackingGenerator(""))
	if err != nil {
		t.Fatal(err)
	}
	if updates["deliveredDate"] != now {
		t.Fatalf("expected deliveredDate, got %v", updates)
	}

	delivered := now
	order.Status = models.OrderStatusShipped
	order.DeliveredDate = &delivered
	updates, err = applyStatusChange(order, models.OrderStatusDelivered, "", now.Add(time.Hour), fixedTrackingGenerator(""))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := updates["deliveredDate"]; ok {
		t.Fatal("deliveredDate must be set at most once")
	}
}

func TestNewTrackingGeneratorFormat(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC) }
	gen := NewTrackingGenerator(now, func(n int) int { return 2345 })

	got := gen()
	if got != "TRK2026082912345" {
		t.Fatalf("expected TRK2026082912345, got %s", got)
	}
	if !trackingPattern.MatchString(got) {
		t.Fatalf("tracking number %s does not match the TRK<yyyyMMdd><5-digit> format", got)
	}
}

func TestDefaultTrackingGeneratorMatchesFormat(t *testing.T) {
	gen := DefaultTrackingGenerator()
	for i := 0; i < 100; i++ {
		if got := gen(); !trackingPattern.MatchString(got) {
			t.Fatalf("generated tracking number %s does not match format", got)
		}
	}
}
