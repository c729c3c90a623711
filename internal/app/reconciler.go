package app

import (
	"context"
	"errors"
	"fmt"

	"iq-report-service/internal/domain"
	"iq-report-service/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentLookup resolves a provider payment id into a classified event.
// Mercado Pago notifications only carry the payment id, so the
// reconciler has to fetch status and payer email before matching.
type PaymentLookup interface {
	LookupPayment(ctx context.Context, paymentID string) (domain.PaymentEvent, error)
}

// Reconciler matches inbound payment events to pending sessions and
// applies the corresponding status transition, at most one per event.
// Business outcomes (event ignored, nothing pending) are acknowledged,
// never errors; providers retry on anything else.
type Reconciler struct {
	store         SessionStore
	lookup        PaymentLookup
	hub           *StatusHub
	log           logrus.FieldLogger
	allowFallback bool
}

func NewReconciler(store SessionStore, lookup PaymentLookup, hub *StatusHub, log logrus.FieldLogger, allowFallback bool) *Reconciler {
	return &Reconciler{
		store:         store,
		lookup:        lookup,
		hub:           hub,
		log:           log,
		allowFallback: allowFallback,
	}
}

// Process applies a normalized payment event. Errors are reserved for
// missing configuration and store failures; everything else resolves to
// an acknowledged outcome.
func (r *Reconciler) Process(ctx context.Context, ev domain.PaymentEvent) (domain.ReconcileOutcome, error) {
	if ev.Kind == domain.EventUnknown && ev.PaymentID != "" {
		if r.lookup == nil {
			return domain.ReconcileOutcome{}, fmt.Errorf("%w: payment lookup not configured for %s", domain.ErrMissingConfig, ev.Provider)
		}
		resolved, err := r.lookup.LookupPayment(ctx, ev.PaymentID)
		if err != nil {
			return domain.ReconcileOutcome{}, err
		}
		resolved.Provider = ev.Provider
		ev = resolved
	}

	log := r.log.WithFields(logrus.Fields{
		"provider": ev.Provider,
		"kind":     ev.Kind,
		"orderId":  ev.OrderID,
		"email":    ev.Email,
	})

	switch ev.Kind {
	case domain.EventPaid:
		return r.applyPaid(ctx, ev, log)
	case domain.EventRefused:
		return r.applyTerminal(ctx, ev, domain.StatusRefused, log)
	case domain.EventRefunded:
		return r.applyTerminal(ctx, ev, domain.StatusRefunded, log)
	default:
		log.WithField("rawStatus", ev.RawStatus).Info("webhook event ignored")
		metrics.WebhookEvents.WithLabelValues(ev.Provider, "ignored").Inc()
		return domain.ReconcileOutcome{Reason: "event ignored"}, nil
	}
}

// applyPaid finds the pending session for the payer and flips it to
// paid. Matching order: pending-by-email, then (only when enabled) the
// globally most recent pending session, then acknowledged no-op.
func (r *Reconciler) applyPaid(ctx context.Context, ev domain.PaymentEvent, log logrus.FieldLogger) (domain.ReconcileOutcome, error) {
	var (
		target   domain.Session
		fallback bool
	)

	found := false
	if ev.Email != "" {
		session, err := r.store.LatestPendingByEmail(ctx, domain.NormalizeEmail(ev.Email))
		switch {
		case err == nil:
			target, found = session, true
		case !errors.Is(err, domain.ErrSessionNotFound):
			return domain.ReconcileOutcome{}, err
		}
	}

	if !found {
		if !r.allowFallback {
			log.Warn("no pending session matched and fallback matching is disabled")
			metrics.WebhookEvents.WithLabelValues(ev.Provider, "unmatched").Inc()
			return domain.ReconcileOutcome{Reason: "no pending session for event"}, nil
		}
		session, err := r.store.LatestPending(ctx)
		switch {
		case err == nil:
			target, found, fallback = session, true, true
		case errors.Is(err, domain.ErrSessionNotFound):
			log.Info("nothing pending anywhere, acknowledging")
			metrics.WebhookEvents.WithLabelValues(ev.Provider, "unmatched").Inc()
			return domain.ReconcileOutcome{Reason: "no pending session for event"}, nil
		default:
			return domain.ReconcileOutcome{}, err
		}
	}

	if fallback {
		// Degraded match: the event could belong to a different customer.
		log.WithFields(logrus.Fields{
			"sessionId":    target.SessionID,
			"sessionEmail": target.Email,
		}).Warn("fallback match: paying the most recent pending session")
		metrics.FallbackMatches.WithLabelValues(ev.Provider).Inc()
	}

	updated, err := r.store.UpdateStatus(ctx, target.SessionID, domain.StatusPaid, ev.OrderID)
	if err != nil {
		return domain.ReconcileOutcome{}, err
	}
	r.notify(updated)

	log.WithField("sessionId", updated.SessionID).Info("session marked paid")
	metrics.WebhookEvents.WithLabelValues(ev.Provider, "paid").Inc()
	return domain.ReconcileOutcome{
		Applied:   true,
		Fallback:  fallback,
		SessionID: updated.SessionID,
		Status:    domain.StatusPaid,
	}, nil
}

// applyTerminal handles refused, refunded and chargeback events. Refunds
// target the session the order was reconciled to; when the order id is
// unknown the payer's most recent session is used instead. No global
// fallback here: revoking a stranger's access would be worse than
// missing a refund.
func (r *Reconciler) applyTerminal(ctx context.Context, ev domain.PaymentEvent, status domain.PaymentStatus, log logrus.FieldLogger) (domain.ReconcileOutcome, error) {
	var target domain.Session
	found := false

	if ev.OrderID != "" {
		session, err := r.store.GetByOrderID(ctx, ev.OrderID)
		switch {
		case err == nil:
			target, found = session, true
		case !errors.Is(err, domain.ErrSessionNotFound):
			return domain.ReconcileOutcome{}, err
		}
	}
	if !found && ev.Email != "" {
		session, err := r.store.LatestByEmail(ctx, domain.NormalizeEmail(ev.Email))
		switch {
		case err == nil:
			target, found = session, true
		case !errors.Is(err, domain.ErrSessionNotFound):
			return domain.ReconcileOutcome{}, err
		}
	}
	if !found {
		log.Info("no session matched terminal event, acknowledging")
		metrics.WebhookEvents.WithLabelValues(ev.Provider, "unmatched").Inc()
		return domain.ReconcileOutcome{Reason: "no session for event"}, nil
	}

	updated, err := r.store.UpdateStatus(ctx, target.SessionID, status, ev.OrderID)
	if err != nil {
		return domain.ReconcileOutcome{}, err
	}
	r.notify(updated)

	log.WithFields(logrus.Fields{
		"sessionId": updated.SessionID,
		"status":    status,
	}).Info("session status transitioned")
	metrics.WebhookEvents.WithLabelValues(ev.Provider, string(status)).Inc()
	return domain.ReconcileOutcome{
		Applied:   true,
		SessionID: updated.SessionID,
		Status:    status,
	}, nil
}

// VerifyManually marks the latest pending session for an email as paid
// with a generated order id. This is the support path for payments the
// webhook never matched.
func (r *Reconciler) VerifyManually(ctx context.Context, email string) (domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Session{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	target, err := r.store.LatestPendingByEmail(ctx, email)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Distinguish "already paid" from "never took the test".
		if prior, priorErr := r.store.LatestByEmail(ctx, email); priorErr == nil {
			return prior, fmt.Errorf("%w: latest session %s is already %s", domain.ErrValidation, prior.SessionID, prior.PaymentStatus)
		}
		return domain.Session{}, err
	}
	if err != nil {
		return domain.Session{}, err
	}

	updated, err := r.store.UpdateStatus(ctx, target.SessionID, domain.StatusPaid, "manual_"+uuid.NewString())
	if err != nil {
		return domain.Session{}, err
	}
	r.notify(updated)

	r.log.WithFields(logrus.Fields{
		"sessionId": updated.SessionID,
		"email":     email,
	}).Info("payment verified manually")
	return updated, nil
}

func (r *Reconciler) notify(session domain.Session) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(StatusUpdate{
		SessionID:     session.SessionID,
		PaymentStatus: session.PaymentStatus,
		OrderID:       session.ExternalOrderID,
		At:            session.UpdatedAt,
	})
}
