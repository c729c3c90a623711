package app

import (
	"context"
	"fmt"
	"time"

	"iq-report-service/internal/domain"
	"iq-report-service/internal/metrics"
	"iq-report-service/internal/quiz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionService owns the session lifecycle: creation after a finished
// quiz, direct lookups, and explicit status updates (the admin/backfill
// path; webhook-driven transitions go through the Reconciler).
type SessionService struct {
	store SessionStore
	bank  *quiz.Repository
	hub   *StatusHub
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

func NewSessionService(store SessionStore, bank *quiz.Repository, hub *StatusHub, log logrus.FieldLogger) *SessionService {
	return &SessionService{
		store: store,
		bank:  bank,
		hub:   hub,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// CreateSessionInput carries a finished quiz attempt. Score and
// DerivedIndex are optional: the original client computes them itself,
// so supplied values are trusted; absent values are recomputed from the
// answers against the bank.
type CreateSessionInput struct {
	SessionID    string
	Email        string
	Answers      map[int]string
	Score        *int
	DerivedIndex *int
}

func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (domain.Session, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.Session{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if len(in.Answers) == 0 {
		return domain.Session{}, fmt.Errorf("%w: answers are required", domain.ErrValidation)
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}

	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	result := quiz.Score(bank, in.Answers)
	score, index := result.Score, result.DerivedIndex
	if in.Score != nil {
		score = *in.Score
	}
	if in.DerivedIndex != nil {
		index = *in.DerivedIndex
	}

	now := s.now()
	session := domain.Session{
		SessionID:     sessionID,
		Email:         email,
		Answers:       in.Answers,
		Score:         score,
		DerivedIndex:  index,
		PaymentStatus: domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	metrics.SessionsCreated.Inc()

	s.log.WithFields(logrus.Fields{
		"sessionId":    sessionID,
		"email":        email,
		"score":        score,
		"derivedIndex": index,
	}).Info("session created")
	return session, nil
}

// GetBySessionID returns the stored session or domain.ErrSessionNotFound.
func (s *SessionService) GetBySessionID(ctx context.Context, sessionID string) (domain.Session, error) {
	return s.store.GetByID(ctx, sessionID)
}

// GetLatestByEmail returns the most recent session for an email.
func (s *SessionService) GetLatestByEmail(ctx context.Context, email string) (domain.Session, error) {
	return s.store.LatestByEmail(ctx, domain.NormalizeEmail(email))
}

// UpdateStatus applies an explicit status transition addressed either by
// session id or by email (most recent session). Used by the PATCH
// endpoint, mirroring webhook semantics without event classification.
func (s *SessionService) UpdateStatus(ctx context.Context, sessionID, email string, status domain.PaymentStatus) (domain.Session, error) {
	if !status.Valid() {
		return domain.Session{}, fmt.Errorf("%w: unknown payment status %q", domain.ErrValidation, status)
	}
	if sessionID == "" {
		target, err := s.store.LatestByEmail(ctx, domain.NormalizeEmail(email))
		if err != nil {
			return domain.Session{}, err
		}
		sessionID = target.SessionID
	}
	session, err := s.store.UpdateStatus(ctx, sessionID, status, "")
	if err != nil {
		return domain.Session{}, err
	}
	s.hub.Publish(StatusUpdate{
		SessionID:     session.SessionID,
		PaymentStatus: session.PaymentStatus,
		OrderID:       session.ExternalOrderID,
		At:            session.UpdatedAt,
	})
	s.log.WithFields(logrus.Fields{
		"sessionId": session.SessionID,
		"status":    session.PaymentStatus,
	}).Info("session status updated")
	return session, nil
}

// Questions returns the bank stripped of answers, for serving to clients.
func (s *SessionService) Questions(ctx context.Context) ([]domain.Question, error) {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, len(bank.Questions))
	for i, q := range bank.Questions {
		q.Answer = ""
		questions[i] = q
	}
	return questions, nil
}
