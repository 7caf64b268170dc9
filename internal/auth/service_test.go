package auth

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/mailer"
	"github.com/clubhub-app/backend/internal/otp"
	"github.com/clubhub-app/backend/internal/password"
)

type testEnv struct {
	svc            *Service
	users          *memUserStore
	signupLedger   *memSignupLedger
	grants         *memGrants
	signupNotifier *memNotifier
	resetNotifier  *memNotifier
	hasher         *password.Hasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	users := newMemUserStore()
	ledger := newMemSignupLedger()
	grants := newMemGrants()
	signupNotifier := &memNotifier{}
	resetNotifier := &memNotifier{}

	ttl := 10 * time.Minute
	svc := NewService(ServiceParams{
		Users:        users,
		SignupLedger: ledger,
		Grants:       grants,
		SignupOTP:    otp.NewIssuer(ledger, signupNotifier, mailer.SignupOTPMessage, ttl, zap.NewNop()),
		ResetOTP:     otp.NewIssuer(users, resetNotifier, mailer.ResetOTPMessage, ttl, zap.NewNop()),
		Hasher:       hasher,
		GrantTTL:     ttl,
		Log:          zap.NewNop(),
	})

	return &testEnv{
		svc:            svc,
		users:          users,
		signupLedger:   ledger,
		grants:         grants,
		signupNotifier: signupNotifier,
		resetNotifier:  resetNotifier,
		hasher:         hasher,
	}
}

// signup drives the full two-step registration and returns the account's
// plaintext password for later logins.
func (e *testEnv) signup(t *testing.T, username, email string) string {
	t.Helper()
	ctx := t.Context()

	if err := e.svc.RequestSignupOTP(ctx, email); err != nil {
		t.Fatalf("RequestSignupOTP failed: %v", err)
	}
	code := e.signupLedger.codes[email]
	if _, err := e.svc.CompleteSignup(ctx, username, email, "hunter2hunter2", code); err != nil {
		t.Fatalf("CompleteSignup failed: %v", err)
	}
	return "hunter2hunter2"
}
