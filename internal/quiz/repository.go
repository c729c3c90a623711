package quiz

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"iq-report-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches the question bank from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context) (domain.QuestionBank, error)
}

// Repository caches the bank with TTL to avoid repeated store hits when
// a non-static loader is configured.
type Repository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    domain.QuestionBank
	expiresAt time.Time
}

func NewRepository(loader BankLoader, ttl time.Duration) *Repository {
	return &Repository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *Repository) GetBank(ctx context.Context) (domain.QuestionBank, error) {
	now := r.clock()

	r.mu.RLock()
	if r.expiresAt.After(now) {
		bank := r.cached
		r.mu.RUnlock()
		return bank, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.expiresAt.After(now) {
			bank := r.cached
			r.mu.RUnlock()
			return bank, nil
		}
		r.mu.RUnlock()

		bank, err := r.loader.LoadBank(ctx)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		r.mu.Lock()
		r.cached = bank
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// StaticBankLoader serves the built-in bank (tests/demos and the default
// deployment, which ships the bank in the binary).
type StaticBankLoader struct {
	bank domain.QuestionBank
}

func NewStaticBankLoader(bank domain.QuestionBank) *StaticBankLoader {
	return &StaticBankLoader{bank: bank}
}

func (l *StaticBankLoader) LoadBank(_ context.Context) (domain.QuestionBank, error) {
	return l.bank, nil
}

func (r *Repository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
