package app

import (
	"context"

	"iq-report-service/internal/domain"
	"iq-report-service/internal/quiz"
)

// Report is what the gate discloses for a session. Outcome is only set
// once the session is paid; before that callers poll on Pending.
type Report struct {
	Pending       bool                 `json:"pending,omitempty"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Outcome       *domain.Outcome      `json:"outcome,omitempty"`
}

// ReportGate is the read path that serves quiz outcomes post-payment.
// It never mutates.
type ReportGate struct {
	store SessionStore
	bank  *quiz.Repository
}

func NewReportGate(store SessionStore, bank *quiz.Repository) *ReportGate {
	return &ReportGate{store: store, bank: bank}
}

// Get returns the session's report. Unknown sessions surface
// domain.ErrSessionNotFound; unpaid sessions yield a pending indicator,
// not an error, so clients can keep polling.
func (g *ReportGate) Get(ctx context.Context, sessionID string) (Report, error) {
	session, err := g.store.GetByID(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}

	if !session.Paid() {
		return Report{Pending: true, PaymentStatus: session.PaymentStatus}, nil
	}

	bank, err := g.bank.GetBank(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		PaymentStatus: session.PaymentStatus,
		Outcome: &domain.Outcome{
			SessionID:      session.SessionID,
			Email:          session.Email,
			Score:          session.Score,
			TotalQuestions: bank.Total(),
			DerivedIndex:   session.DerivedIndex,
			Classification: quiz.Classification(session.DerivedIndex),
			CreatedAt:      session.CreatedAt,
		},
	}, nil
}
