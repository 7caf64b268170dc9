package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubhub-app/backend/internal/domain"
	"github.com/clubhub-app/backend/internal/store"
)

type memArchiveStore struct {
	mu      sync.Mutex
	byEmail map[string]domain.ArchivedUser
	err     error
}

func newMemArchiveStore() *memArchiveStore {
	return &memArchiveStore{byEmail: make(map[string]domain.ArchivedUser)}
}

func (a *memArchiveStore) Upsert(_ context.Context, archived domain.ArchivedUser) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.byEmail[archived.Email] = archived
	return nil
}

func TestArchiveAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	env.signup(t, "alice", "a@x.com")

	user, err := env.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	archive := newMemArchiveStore()
	archiver := NewArchiver(env.users, archive, nil)

	archived, err := archiver.ArchiveAndDelete(ctx, user.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "alice", archived.Username)
	require.Equal(t, user.PasswordHash, archived.PasswordHash)
	require.False(t, archived.DeletedAt.IsZero())

	_, err = env.users.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, store.ErrUserNotFound)
	require.Contains(t, archive.byEmail, "a@x.com")
}

func TestArchiveUnknownID(t *testing.T) {
	env := newTestEnv(t)
	archiver := NewArchiver(env.users, newMemArchiveStore(), nil)

	_, err := archiver.ArchiveAndDelete(t.Context(), "64a000000000000000000000")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestArchiveFailureKeepsLiveRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	env.signup(t, "alice", "a@x.com")

	user, err := env.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	archive := newMemArchiveStore()
	archive.err = errors.New("mongo down")
	archiver := NewArchiver(env.users, archive, nil)

	_, err = archiver.ArchiveAndDelete(ctx, user.ID.Hex())
	require.ErrorIs(t, err, ErrStorage)

	// The delete never ran; the identity is intact.
	_, err = env.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
}

func TestReDeletionOverwritesArchiveEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	archive := newMemArchiveStore()
	archiver := NewArchiver(env.users, archive, nil)

	env.signup(t, "alice", "a@x.com")
	first, err := env.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = archiver.ArchiveAndDelete(ctx, first.ID.Hex())
	require.NoError(t, err)

	// Same email signs up again and is deleted again.
	env.signup(t, "alice-2", "a@x.com")
	second, err := env.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = archiver.ArchiveAndDelete(ctx, second.ID.Hex())
	require.NoError(t, err)

	require.Len(t, archive.byEmail, 1)
	require.Equal(t, "alice-2", archive.byEmail["a@x.com"].Username)
}
