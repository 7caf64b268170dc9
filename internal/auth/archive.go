package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/domain"
	"github.com/clubhub-app/backend/internal/store"
)

// ArchiveStore receives retained copies of deleted identities. Writes are
// upserts keyed by email: re-deletion overwrites rather than duplicates.
type ArchiveStore interface {
	Upsert(ctx context.Context, archived domain.ArchivedUser) error
}

// Archiver owns all writes to the archive. It is invoked synchronously
// before the live record is removed.
type Archiver struct {
	users   UserStore
	archive ArchiveStore
	log     *zap.Logger
	now     func() time.Time
}

func NewArchiver(users UserStore, archive ArchiveStore, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{users: users, archive: archive, log: log, now: time.Now}
}

// ArchiveAndDelete copies the identity into the archive, then deletes the
// live record. If the delete fails after the archive succeeded, both records
// exist; that window is logged for operator reconciliation, never rolled
// back automatically.
func (a *Archiver) ArchiveAndDelete(ctx context.Context, id string) (*domain.ArchivedUser, error) {
	user, err := a.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	archived := domain.ArchivedUser{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		DeletedAt:    a.now(),
	}
	if err := a.archive.Upsert(ctx, archived); err != nil {
		a.log.Error("archive upsert failed",
			zap.String("op", "auth.archive_and_delete"),
			zap.String("email", user.Email),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := a.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Lost a race with another delete; the archive write stands.
			return &archived, nil
		}
		a.log.Error("live record delete failed after archive; operator reconciliation required",
			zap.String("op", "auth.archive_and_delete"),
			zap.String("email", user.Email),
			zap.String("user_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &archived, nil
}
