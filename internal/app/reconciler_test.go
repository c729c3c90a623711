package app_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"iq-report-service/internal/app"
	"iq-report-service/internal/domain"
	"iq-report-service/internal/infra/memory"
	"github.com/sirupsen/logrus"
)

func TestPaidEventMatchesPendingByEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "x@y.com", time.Now().Add(-time.Minute))
	seed(t, store, "s2", "other@y.com", time.Now())

	rec := newReconciler(store, nil, false)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify",
		Kind:     domain.EventPaid,
		Email:    "x@y.com",
		OrderID:  "ord-1",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !outcome.Applied || outcome.SessionID != "s1" || outcome.Fallback {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PaymentStatus != domain.StatusPaid || got.ExternalOrderID != "ord-1" {
		t.Fatalf("expected paid with order id, got %+v", got)
	}

	// The other customer's session is untouched.
	other, _ := store.GetByID(ctx, "s2")
	if other.PaymentStatus != domain.StatusPending {
		t.Fatalf("expected s2 untouched, got %s", other.PaymentStatus)
	}
}

func TestPaidEventNoMatchIsAcknowledgedNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	rec := newReconciler(store, nil, true)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify",
		Kind:     domain.EventPaid,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Applied {
		t.Fatalf("expected no-op, got %+v", outcome)
	}
}

func TestPaidEventFallbackDisabled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "someone@else.com", time.Now())

	rec := newReconciler(store, nil, false)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify",
		Kind:     domain.EventPaid,
		Email:    "buyer@shop.com",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Applied {
		t.Fatalf("fallback disabled must not mutate, got %+v", outcome)
	}

	got, _ := store.GetByID(ctx, "s1")
	if got.PaymentStatus != domain.StatusPending {
		t.Fatalf("expected s1 untouched, got %s", got.PaymentStatus)
	}
}

func TestPaidEventFallbackMatchesLatestPending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "old", "a@b.c", time.Now().Add(-time.Hour))
	seed(t, store, "recent", "c@d.e", time.Now())

	rec := newReconciler(store, nil, true)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify",
		Kind:     domain.EventPaid,
		OrderID:  "ord-9",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !outcome.Applied || !outcome.Fallback || outcome.SessionID != "recent" {
		t.Fatalf("expected fallback match on recent, got %+v", outcome)
	}
}

func TestDuplicatePaidDeliveryIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "x@y.com", time.Now())

	rec := newReconciler(store, nil, false)
	ev := domain.PaymentEvent{Provider: "kiwify", Kind: domain.EventPaid, Email: "x@y.com", OrderID: "ord-1"}

	if _, err := rec.Process(ctx, ev); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := rec.Process(ctx, ev)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if second.Applied {
		t.Fatalf("expected second delivery to find nothing pending, got %+v", second)
	}
}

func TestRefundedEventMatchesByOrderID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "x@y.com", time.Now())

	rec := newReconciler(store, nil, false)

	if _, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify", Kind: domain.EventPaid, Email: "x@y.com", OrderID: "ord-1",
	}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify", Kind: domain.EventRefunded, OrderID: "ord-1",
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if !outcome.Applied || outcome.SessionID != "s1" || outcome.Status != domain.StatusRefunded {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	got, _ := store.GetByID(ctx, "s1")
	if got.PaymentStatus != domain.StatusRefunded {
		t.Fatalf("expected refunded, got %s", got.PaymentStatus)
	}
}

func TestRefusedEventFallsBackToEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "x@y.com", time.Now())

	rec := newReconciler(store, nil, false)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider: "kiwify", Kind: domain.EventRefused, Email: "X@Y.com",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !outcome.Applied || outcome.Status != domain.StatusRefused {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestIgnoredEventDoesNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "x@y.com", time.Now())

	rec := newReconciler(store, nil, true)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider:  "kiwify",
		Kind:      domain.EventIgnored,
		RawStatus: "subscription.started",
		Email:     "x@y.com",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if outcome.Applied {
		t.Fatalf("expected no-op, got %+v", outcome)
	}
}

func TestUnknownEventResolvesThroughLookup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "payer@mail.com", time.Now())

	lookup := lookupFunc(func(ctx context.Context, paymentID string) (domain.PaymentEvent, error) {
		if paymentID != "777" {
			t.Fatalf("unexpected payment id %s", paymentID)
		}
		return domain.PaymentEvent{
			Kind:    domain.EventPaid,
			Email:   "payer@mail.com",
			OrderID: "777",
		}, nil
	})

	rec := newReconciler(store, lookup, false)

	outcome, err := rec.Process(ctx, domain.PaymentEvent{
		Provider:  "mercadopago",
		Kind:      domain.EventUnknown,
		PaymentID: "777",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !outcome.Applied || outcome.SessionID != "s1" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestUnknownEventWithoutLookupIsConfigError(t *testing.T) {
	rec := newReconciler(memory.NewSessionStore(), nil, false)

	_, err := rec.Process(context.Background(), domain.PaymentEvent{
		Provider:  "mercadopago",
		Kind:      domain.EventUnknown,
		PaymentID: "777",
	})
	if !errors.Is(err, domain.ErrMissingConfig) {
		t.Fatalf("expected missing config, got %v", err)
	}
}

func TestVerifyManually(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	seed(t, store, "s1", "x@y.com", time.Now())

	rec := newReconciler(store, nil, false)

	session, err := rec.VerifyManually(ctx, " X@Y.com ")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if session.PaymentStatus != domain.StatusPaid {
		t.Fatalf("expected paid, got %s", session.PaymentStatus)
	}
	if !strings.HasPrefix(session.ExternalOrderID, "manual_") {
		t.Fatalf("expected manual order id, got %q", session.ExternalOrderID)
	}

	// A second verification reports the session as already handled.
	if _, err := rec.VerifyManually(ctx, "x@y.com"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for already-paid, got %v", err)
	}

	if _, err := rec.VerifyManually(ctx, "never@took.it"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type lookupFunc func(ctx context.Context, paymentID string) (domain.PaymentEvent, error)

func (f lookupFunc) LookupPayment(ctx context.Context, paymentID string) (domain.PaymentEvent, error) {
	return f(ctx, paymentID)
}

func newReconciler(store app.SessionStore, lookup app.PaymentLookup, allowFallback bool) *app.Reconciler {
	return app.NewReconciler(store, lookup, app.NewStatusHub(), testLogger(), allowFallback)
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seed(t *testing.T, store app.SessionStore, id, email string, createdAt time.Time) {
	t.Helper()
	err := store.Create(context.Background(), domain.Session{
		SessionID:     id,
		Email:         email,
		Answers:       map[int]string{1: "32"},
		Score:         20,
		DerivedIndex:  104,
		PaymentStatus: domain.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}
