package memory

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"

	"github.com/google/uuid"
)

type authRepository struct {
	store *Store
}

// NewAuthRepository creates an AuthRepository over the store.
func NewAuthRepository(store *Store) repository.AuthRepository {
	return &authRepository{store: store}
}

func (repo *authRepository) SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string, now time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.users[userID]; !ok {
		return repository.ErrUserNotFound
	}
	repo.store.passwords[userID] = passwordRecord{hash: hash, updatedAt: now}

	return nil
}

func (repo *authRepository) GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	record, ok := repo.store.passwords[userID]
	if !ok {
		return "", repository.ErrNoPassword
	}

	return record.hash, nil
}

func (repo *authRepository) CreateEmailVerification(ctx context.Context, verification *entity.EmailVerification) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.verifications = append(repo.store.verifications, *verification)

	return nil
}
