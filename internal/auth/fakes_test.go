package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clubhub-app/backend/internal/domain"
	"github.com/clubhub-app/backend/internal/store"
)

// memUserStore mimics the Mongo-backed store, including the unique email
// index and the conditional compare-and-clear on the inline OTP fields.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by email
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*domain.User)}
}

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return store.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	s.users[user.Email] = &cp
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID.Hex() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) Upsert(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return store.ErrUserNotFound
	}
	expires := time.Now().Add(ttl)
	u.OTP = &code
	u.OTPExpiresAt = &expires
	return nil
}

func (s *memUserStore) ConsumeResetOTP(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || u.OTP == nil || *u.OTP != code {
		return store.ErrNoOutstandingCode
	}
	u.OTP = nil
	u.OTPExpiresAt = nil
	return nil
}

func (s *memUserStore) UpdatePassword(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return store.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *memUserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, u := range s.users {
		if u.ID.Hex() == id {
			delete(s.users, email)
			return nil
		}
	}
	return store.ErrUserNotFound
}

// setOTP plants an outstanding reset code directly.
func (s *memUserStore) setOTP(email, code string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[email]
	u.OTP = &code
	u.OTPExpiresAt = &expires
}

// memSignupLedger mimics the Redis signup ledger with lazy expiry.
type memSignupLedger struct {
	mu      sync.Mutex
	codes   map[string]string
	expires map[string]time.Time
}

func newMemSignupLedger() *memSignupLedger {
	return &memSignupLedger{codes: make(map[string]string), expires: make(map[string]time.Time)}
}

func (l *memSignupLedger) Upsert(_ context.Context, email, code string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.codes[email] = code
	l.expires[email] = time.Now().Add(ttl)
	return nil
}

func (l *memSignupLedger) Consume(_ context.Context, email, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored, ok := l.codes[email]
	if !ok || time.Now().After(l.expires[email]) {
		return store.ErrCodeNotFound
	}
	if stored != code {
		return store.ErrCodeMismatch
	}
	delete(l.codes, email)
	delete(l.expires, email)
	return nil
}

// memGrants mimics the Redis reset-grant store.
type memGrants struct {
	mu     sync.Mutex
	next   int
	grants map[string]string // token -> email
}

func newMemGrants() *memGrants {
	return &memGrants{grants: make(map[string]string)}
}

func (g *memGrants) Create(_ context.Context, email string, _ time.Duration) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	token := fmt.Sprintf("grant-%d", g.next)
	g.grants[token] = email
	return token, nil
}

func (g *memGrants) Consume(_ context.Context, token string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	email, ok := g.grants[token]
	if !ok {
		return "", store.ErrGrantNotFound
	}
	delete(g.grants, token)
	return email, nil
}

// memNotifier records outbound mail and can be told to fail.
type memNotifier struct {
	mu    sync.Mutex
	sent  []string // recipients in order
	fail  bool
	codes []string
}

func (n *memNotifier) Send(to, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("smtp unavailable")
	}
	n.sent = append(n.sent, to)
	n.codes = append(n.codes, body)
	return nil
}

func (n *memNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
