package app

import (
	"context"

	"iq-report-service/internal/domain"
)

// SessionStore abstracts how quiz sessions are persisted (in-memory,
// Redis, Postgres). Every lookup that can miss returns
// domain.ErrSessionNotFound; Create returns domain.ErrDuplicateSession
// when the id is taken.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	GetByID(ctx context.Context, sessionID string) (domain.Session, error)
	// LatestByEmail returns the most recently created session for a
	// normalized email, regardless of payment status.
	LatestByEmail(ctx context.Context, email string) (domain.Session, error)
	// LatestPendingByEmail returns the most recent still-pending session
	// for a normalized email.
	LatestPendingByEmail(ctx context.Context, email string) (domain.Session, error)
	// LatestPending returns the globally most recent pending session.
	// Only the reconciler's degraded fallback strategy uses it.
	LatestPending(ctx context.Context) (domain.Session, error)
	// GetByOrderID finds the session a payment event was previously
	// reconciled to (refund and chargeback path).
	GetByOrderID(ctx context.Context, orderID string) (domain.Session, error)
	// UpdateStatus overwrites the payment status, refreshes updatedAt and,
	// when orderID is non-empty, records the external order. Blind
	// last-write-wins; there is no version check.
	UpdateStatus(ctx context.Context, sessionID string, status domain.PaymentStatus, orderID string) (domain.Session, error)
}
