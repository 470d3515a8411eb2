package memory

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"
)

type externalAccountRepository struct {
	store *Store
}

// NewExternalAccountRepository creates an ExternalAccountRepository over the store.
func NewExternalAccountRepository(store *Store) repository.ExternalAccountRepository {
	return &externalAccountRepository{store: store}
}

// Touch upserts under a single lock acquisition.
func (repo *externalAccountRepository) Touch(ctx context.Context, user entity.RemoteUser, now time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if record, ok := repo.store.remoteUsers[user.Key]; ok {
		record.user.Username = user.Username
		record.updatedAt = now

		return nil
	}
	repo.store.remoteUsers[user.Key] = &remoteUserRecord{user: user, createdAt: now, updatedAt: now}

	return nil
}

func (repo *externalAccountRepository) Find(ctx context.Context, key entity.RemoteAccountKey) (*entity.RemoteUser, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	record, ok := repo.store.remoteUsers[key]
	if !ok {
		return nil, repository.ErrRemoteUserNotFound
	}
	user := record.user

	return &user, nil
}
