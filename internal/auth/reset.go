package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/otp"
	"github.com/clubhub-app/backend/internal/store"
)

// ForgotPassword issues a reset code onto the identity record. Unlike the
// signup path this requires the identity to exist, which leaks existence —
// an explicit UX choice carried over from the product.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	_, err := s.resetOTP.Issue(ctx, email)
	return mapIssueError(err)
}

// VerifyResetOTP checks the presented code against the identity's inline OTP
// fields and, on success, consumes it and mints a single-use reset grant.
// The expiry check runs only after the code matches; externally both map to
// the same 400, internally they stay distinguishable.
func (s *Service) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	if email == "" || code == "" {
		return "", fmt.Errorf("%w: email and otp are required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if user.OTP == nil {
		return "", ErrNoOutstandingCode
	}
	if *user.OTP != otp.Normalize(code) {
		return "", ErrInvalidOTP
	}
	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return "", ErrOTPExpired
	}

	// Compare-and-clear: of two concurrent verifies only one consumes.
	if err := s.users.ConsumeResetOTP(ctx, email, *user.OTP); err != nil {
		if errors.Is(err, store.ErrNoOutstandingCode) {
			return "", ErrNoOutstandingCode
		}
		s.log.Error("reset otp consume failed",
			zap.String("op", "auth.verify_reset_otp"),
			zap.String("email", email),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	token, err := s.grants.Create(ctx, email, s.grantTTL)
	if err != nil {
		s.log.Error("reset grant create failed",
			zap.String("op", "auth.verify_reset_otp"),
			zap.String("email", email),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return token, nil
}

// ResetPassword replaces the credential. The caller must present the grant
// minted by VerifyResetOTP; consuming it here removes any reliance on
// client-side call ordering.
func (s *Service) ResetPassword(ctx context.Context, email, grantToken, newPassword string) error {
	if email == "" || grantToken == "" || newPassword == "" {
		return fmt.Errorf("%w: email, reset token and new password are required", ErrValidation)
	}

	grantEmail, err := s.grants.Consume(ctx, grantToken)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrGrantNotFound), errors.Is(err, store.ErrGrantMismatch):
			return ErrInvalidResetGrant
		default:
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}
	if grantEmail != email {
		return ErrInvalidResetGrant
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		s.log.Error("password update failed",
			zap.String("op", "auth.reset_password"),
			zap.String("email", email),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.log.Info("password reset", zap.String("email", email))
	return nil
}
