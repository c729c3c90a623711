package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"iq-report-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SessionStore persists sessions in Postgres.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

const sessionColumns = `session_id, email, answers, score, derived_index, payment_status, COALESCE(external_order_id, ''), created_at, updated_at`

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, email, answers, score, derived_index, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO NOTHING`,
		session.SessionID, session.Email, answers, session.Score, session.DerivedIndex,
		string(session.PaymentStatus), session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateSession
	}
	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE session_id = $1`, sessionID)
	return scanSession(row)
}

func (s *SessionStore) LatestByEmail(ctx context.Context, email string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE email = $1 ORDER BY created_at DESC LIMIT 1`, email)
	return scanSession(row)
}

func (s *SessionStore) LatestPendingByEmail(ctx context.Context, email string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE email = $1 AND payment_status = 'pending'
		 ORDER BY created_at DESC LIMIT 1`, email)
	return scanSession(row)
}

func (s *SessionStore) LatestPending(ctx context.Context) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE payment_status = 'pending'
		 ORDER BY created_at DESC LIMIT 1`)
	return scanSession(row)
}

func (s *SessionStore) GetByOrderID(ctx context.Context, orderID string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE external_order_id = $1
		 ORDER BY created_at DESC LIMIT 1`, orderID)
	return scanSession(row)
}

func (s *SessionStore) UpdateStatus(ctx context.Context, sessionID string, status domain.PaymentStatus, orderID string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE sessions
		SET payment_status = $2,
		    external_order_id = COALESCE(NULLIF($3, ''), external_order_id),
		    updated_at = $4
		WHERE session_id = $1
		RETURNING `+sessionColumns,
		sessionID, string(status), orderID, time.Now())
	return scanSession(row)
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var (
		session domain.Session
		status  string
		answers []byte
	)
	err := row.Scan(&session.SessionID, &session.Email, &answers, &session.Score,
		&session.DerivedIndex, &status, &session.ExternalOrderID,
		&session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.PaymentStatus = domain.PaymentStatus(status)
	if err := json.Unmarshal(answers, &session.Answers); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return session, nil
}
