package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/domain"
	"github.com/clubhub-app/backend/internal/otp"
	"github.com/clubhub-app/backend/internal/password"
	"github.com/clubhub-app/backend/internal/store"
)

// UserStore is the persistence surface the lifecycle controller needs from
// the identity collection.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ConsumeResetOTP(ctx context.Context, email, code string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

// SignupLedger holds pending registrations; consumption is atomic and
// single-use.
type SignupLedger interface {
	Consume(ctx context.Context, email, code string) error
}

// ResetGrants mints and consumes the single-use capability that gates
// ResetPassword after a successful OTP verification.
type ResetGrants interface {
	Create(ctx context.Context, email string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

// Issuer is satisfied by *otp.Issuer.
type Issuer interface {
	Issue(ctx context.Context, email string) (string, error)
}

// Service orchestrates the signup, login, and forgot/reset flows. It owns
// every transition of the identity and signup-OTP records; all state lives in
// the stores, so concurrent requests synchronize only there.
type Service struct {
	users        UserStore
	signupLedger SignupLedger
	grants       ResetGrants
	signupOTP    Issuer
	resetOTP     Issuer
	hasher       *password.Hasher
	grantTTL     time.Duration
	log          *zap.Logger
	now          func() time.Time
}

type ServiceParams struct {
	Users        UserStore
	SignupLedger SignupLedger
	Grants       ResetGrants
	SignupOTP    Issuer
	ResetOTP     Issuer
	Hasher       *password.Hasher
	GrantTTL     time.Duration
	Log          *zap.Logger
	Now          func() time.Time
}

func NewService(p ServiceParams) *Service {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &Service{
		users:        p.Users,
		signupLedger: p.SignupLedger,
		grants:       p.Grants,
		signupOTP:    p.SignupOTP,
		resetOTP:     p.ResetOTP,
		hasher:       p.Hasher,
		grantTTL:     p.GrantTTL,
		log:          p.Log,
		now:          p.Now,
	}
}

// Users returns the directory listing.
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return users, nil
}

// mapIssueError translates issuance failures into the service taxonomy.
func mapIssueError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrDelivery):
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}
