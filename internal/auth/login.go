package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhub-app/backend/internal/domain"
	"github.com/clubhub-app/backend/internal/store"
)

// PlaceholderToken stands in for a real session credential. Minting sessions
// is out of scope; login only signals that the credential verified.
const PlaceholderToken = "authenticated"

// Login resolves the identifier against username or email (first match wins)
// and verifies the credential against the stored hash. "User not found" and
// "incorrect password" are distinguished on purpose.
func (s *Service) Login(ctx context.Context, usernameOrEmail, plainPassword string) (*domain.User, string, error) {
	if usernameOrEmail == "" || plainPassword == "" {
		return nil, "", fmt.Errorf("%w: username/email and password are required", ErrValidation)
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	ok, err := s.hasher.Verify(plainPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrIncorrectPassword
	}

	return user, PlaceholderToken, nil
}
