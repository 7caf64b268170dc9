package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubhub-app/backend/internal/store"
)

func TestSignupHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))
	require.Equal(t, 1, env.signupNotifier.sentCount(), "one OTP mail per request")

	code := env.signupLedger.codes["a@x.com"]
	user, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", code)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.False(t, user.ID.IsZero(), "insert must assign an id")
	require.NotEqual(t, "hunter2hunter2", user.PasswordHash, "password must be stored hashed")

	ok, err := env.hasher.Verify("hunter2hunter2", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignupCodeIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))
	code := env.signupLedger.codes["a@x.com"]

	_, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", code)
	require.NoError(t, err)

	// The account now exists, but the replayed code must fail as an OTP
	// error, not as a duplicate.
	_, err = env.svc.CompleteSignup(ctx, "alice2", "a@x.com", "hunter2hunter2", code)
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestSignupWrongCodeCreatesNoIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))

	_, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", "000000")
	require.ErrorIs(t, err, ErrInvalidOTP)

	_, err = env.users.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestSignupRejectsNonNumericCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))

	_, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", "12a456")
	require.ErrorIs(t, err, ErrInvalidOTP)

	// The stored code survives the malformed attempt.
	code := env.signupLedger.codes["a@x.com"]
	_, err = env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", code)
	require.NoError(t, err)
}

func TestSignupTrimsCodeWhitespace(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))
	code := env.signupLedger.codes["a@x.com"]

	_, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", "  "+code+"\n")
	require.NoError(t, err)
}

func TestSignupReissueInvalidatesOldCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))
	oldCode := env.signupLedger.codes["a@x.com"]
	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))
	newCode := env.signupLedger.codes["a@x.com"]

	if oldCode != newCode {
		_, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", oldCode)
		require.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err := env.svc.CompleteSignup(ctx, "alice", "a@x.com", "hunter2hunter2", newCode)
	require.NoError(t, err)
}

func TestSignupDuplicateEmailStillBurnsCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "alice", "a@x.com")

	require.NoError(t, env.svc.RequestSignupOTP(ctx, "a@x.com"))
	code := env.signupLedger.codes["a@x.com"]

	_, err := env.svc.CompleteSignup(ctx, "alice2", "a@x.com", "hunter2hunter2", code)
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// The code was consumed before the failed insert.
	_, err = env.svc.CompleteSignup(ctx, "alice2", "a@x.com", "hunter2hunter2", code)
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.ErrorIs(t, env.svc.RequestSignupOTP(ctx, ""), ErrValidation)

	_, err := env.svc.CompleteSignup(ctx, "", "a@x.com", "pw", "123456")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.CompleteSignup(ctx, "alice", "a@x.com", "pw", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSignupDeliveryFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	env.signupNotifier.fail = true

	err := env.svc.RequestSignupOTP(t.Context(), "a@x.com")
	require.ErrorIs(t, err, ErrDelivery)

	// The ledger write is kept even though the mail never left.
	require.NotEmpty(t, env.signupLedger.codes["a@x.com"])
}
