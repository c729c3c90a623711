package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"iq-report-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps sessions in Redis. Layout:
//   - session:{id}                  JSON session document
//   - sessions:email:{email}        zset of the email's ids by createdAt
//   - sessions:pending              zset of pending ids by createdAt
//   - sessions:pending:{email}      zset of the email's pending ids
//   - order:{orderId}               reconciled session id
//
// The zsets make every "latest" lookup a single ZREVRANGE. A ttl of 0
// keeps sessions forever, matching the product's no-expiry behavior.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, sessionKey(session.SessionID), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDuplicateSession
	}

	score := float64(session.CreatedAt.UnixNano())
	member := redis.Z{Score: score, Member: session.SessionID}
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, emailKey(session.Email), member)
	pipe.ZAdd(ctx, pendingKey, member)
	pipe.ZAdd(ctx, pendingEmailKey(session.Email), member)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionStore) LatestByEmail(ctx context.Context, email string) (domain.Session, error) {
	return s.latest(ctx, emailKey(email))
}

func (s *SessionStore) LatestPendingByEmail(ctx context.Context, email string) (domain.Session, error) {
	return s.latest(ctx, pendingEmailKey(email))
}

func (s *SessionStore) LatestPending(ctx context.Context) (domain.Session, error) {
	return s.latest(ctx, pendingKey)
}

func (s *SessionStore) GetByOrderID(ctx context.Context, orderID string) (domain.Session, error) {
	sessionID, err := s.client.Get(ctx, orderKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return s.GetByID(ctx, sessionID)
}

func (s *SessionStore) UpdateStatus(ctx context.Context, sessionID string, status domain.PaymentStatus, orderID string) (domain.Session, error) {
	session, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}

	session.PaymentStatus = status
	if orderID != "" {
		session.ExternalOrderID = orderID
	}
	session.UpdatedAt = s.now()

	raw, err := json.Marshal(session)
	if err != nil {
		return domain.Session{}, err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(sessionID), raw, redis.KeepTTL)
	if status == domain.StatusPending {
		member := redis.Z{Score: float64(session.CreatedAt.UnixNano()), Member: sessionID}
		pipe.ZAdd(ctx, pendingKey, member)
		pipe.ZAdd(ctx, pendingEmailKey(session.Email), member)
	} else {
		pipe.ZRem(ctx, pendingKey, sessionID)
		pipe.ZRem(ctx, pendingEmailKey(session.Email), sessionID)
	}
	if session.ExternalOrderID != "" {
		pipe.Set(ctx, orderKey(session.ExternalOrderID), sessionID, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// latest walks a time-ordered zset newest-first until it finds a member
// whose document still exists.
func (s *SessionStore) latest(ctx context.Context, key string) (domain.Session, error) {
	ids, err := s.client.ZRevRange(ctx, key, 0, 0).Result()
	if err != nil {
		return domain.Session{}, err
	}
	if len(ids) == 0 {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.GetByID(ctx, ids[0])
}

const pendingKey = "sessions:pending"

func sessionKey(id string) string         { return "session:" + id }
func emailKey(email string) string        { return "sessions:email:" + email }
func pendingEmailKey(email string) string { return "sessions:pending:" + email }
func orderKey(orderID string) string      { return "order:" + orderID }
