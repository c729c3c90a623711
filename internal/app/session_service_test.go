package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"iq-report-service/internal/app"
	"iq-report-service/internal/domain"
	"iq-report-service/internal/infra/memory"
	"iq-report-service/internal/quiz"
)

func TestCreateSessionScoresAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	bank := quiz.DefaultBank()
	answers := map[int]string{}
	for i, q := range bank.Questions {
		if i >= 20 {
			break
		}
		answers[q.Index] = q.Answer
	}

	session, err := service.CreateSession(ctx, app.CreateSessionInput{
		SessionID: "sess-1",
		Email:     " X@Y.com ",
		Answers:   answers,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Score != 20 || session.DerivedIndex != 104 {
		t.Fatalf("expected 20/104, got %d/%d", session.Score, session.DerivedIndex)
	}
	if session.Email != "x@y.com" {
		t.Fatalf("expected normalized email, got %q", session.Email)
	}
	if session.PaymentStatus != domain.StatusPending {
		t.Fatalf("expected pending, got %s", session.PaymentStatus)
	}

	got, err := service.GetBySessionID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 20 || got.DerivedIndex != 104 {
		t.Fatalf("stored session mismatch %+v", got)
	}
}

func TestCreateSessionTrustsClientScores(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	score, index := 30, 121
	session, err := service.CreateSession(ctx, app.CreateSessionInput{
		Email:        "x@y.com",
		Answers:      map[int]string{1: "32"},
		Score:        &score,
		DerivedIndex: &index,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Score != 30 || session.DerivedIndex != 121 {
		t.Fatalf("expected supplied scores kept, got %d/%d", session.Score, session.DerivedIndex)
	}
	if session.SessionID == "" {
		t.Fatalf("expected generated session id")
	}
}

func TestCreateSessionDuplicate(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	in := app.CreateSessionInput{
		SessionID: "dup",
		Email:     "x@y.com",
		Answers:   map[int]string{1: "32"},
	}
	if _, err := service.CreateSession(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := service.CreateSession(ctx, in); !errors.Is(err, domain.ErrDuplicateSession) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.CreateSession(ctx, app.CreateSessionInput{Answers: map[int]string{1: "32"}}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}
	if _, err := service.CreateSession(ctx, app.CreateSessionInput{Email: "x@y.com"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing answers, got %v", err)
	}
}

func TestUpdateStatusByEmailTargetsLatest(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	seed(t, store, "old", "x@y.com", time.Now().Add(-time.Hour))
	seed(t, store, "new", "x@y.com", time.Now())

	session, err := service.UpdateStatus(ctx, "", "x@y.com", domain.StatusPaid)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if session.SessionID != "new" {
		t.Fatalf("expected latest session, got %s", session.SessionID)
	}

	if _, err := service.UpdateStatus(ctx, "", "nobody@no.where", domain.StatusPaid); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := service.UpdateStatus(ctx, "new", "", "shipped"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad status, got %v", err)
	}
}

func TestQuestionsOmitAnswers(t *testing.T) {
	service, _ := newTestService()

	questions, err := service.Questions(context.Background())
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 35 {
		t.Fatalf("expected 35 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.Answer != "" {
			t.Fatalf("question %d leaked its answer", q.Index)
		}
	}
}

func newTestService() (*app.SessionService, *memory.SessionStore) {
	store := memory.NewSessionStore()
	bank := quiz.NewRepository(quiz.NewStaticBankLoader(quiz.DefaultBank()), 5*time.Minute)
	return app.NewSessionService(store, bank, app.NewStatusHub(), testLogger()), store
}
