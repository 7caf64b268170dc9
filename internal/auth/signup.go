package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/domain"
	"github.com/clubhub-app/backend/internal/otp"
	"github.com/clubhub-app/backend/internal/store"
)

// RequestSignupOTP issues a registration code for email. No account exists
// yet for the signup path, so existence is deliberately not checked and the
// response never reveals whether the email is already registered.
func (s *Service) RequestSignupOTP(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	_, err := s.signupOTP.Issue(ctx, email)
	return mapIssueError(err)
}

// CompleteSignup consumes the pending registration code and creates the
// identity. The code is consumed before the insert, so a duplicate-email
// failure still burns it; the client must request a fresh code to retry.
func (s *Service) CompleteSignup(ctx context.Context, username, email, plainPassword, code string) (*domain.User, error) {
	if username == "" || email == "" || plainPassword == "" || code == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	code = otp.Normalize(code)
	if _, err := strconv.Atoi(code); err != nil {
		return nil, ErrInvalidOTP
	}

	if err := s.signupLedger.Consume(ctx, email, code); err != nil {
		switch {
		case errors.Is(err, store.ErrCodeNotFound), errors.Is(err, store.ErrCodeMismatch):
			return nil, ErrInvalidOTP
		default:
			s.log.Error("signup ledger consume failed",
				zap.String("op", "auth.complete_signup"),
				zap.String("email", email),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		s.log.Error("user insert failed",
			zap.String("op", "auth.complete_signup"),
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.log.Info("signup completed", zap.String("email", email))
	return user, nil
}
