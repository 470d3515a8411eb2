package memory

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userRepository struct {
	store *Store
}

// NewUserRepository creates a UserRepository over the store.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

// Create checks and claims the username and email under the store lock.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.users[user.ID]; ok {
		return errors.Errorf("user %s already exists", user.ID)
	}
	if user.Username != nil {
		if _, taken := repo.store.usernames[*user.Username]; taken {
			return domainerrors.ErrUsernameAlreadyInUse.WrapMessage(*user.Username)
		}
	}
	if user.Email != nil {
		if _, taken := repo.store.emails[*user.Email]; taken {
			return domainerrors.ErrEmailAlreadyInUse.WrapMessage(*user.Email)
		}
	}

	user.IsAdministrator = len(repo.store.users) == 0

	record := &userRecord{
		user:         *cloneUser(user),
		displayNames: []displayNameVersion{{value: user.DisplayName, since: user.CreatedAt}},
	}
	repo.store.users[user.ID] = record
	if user.Username != nil {
		repo.store.usernames[*user.Username] = user.ID
	}
	if user.Email != nil {
		repo.store.emails[*user.Email] = user.ID
	}

	return nil
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	record, ok := repo.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return cloneUser(&record.user), nil
}

func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	id, ok := repo.store.usernames[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return cloneUser(&repo.store.users[id].user), nil
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	id, ok := repo.store.emails[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return cloneUser(&repo.store.users[id].user), nil
}

func (repo *userRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string, now time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	record, ok := repo.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	record.user.DisplayName = displayName
	record.user.UpdatedAt = now
	record.displayNames = append(record.displayNames, displayNameVersion{value: displayName, since: now})

	return nil
}

func (repo *userRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	record, ok := repo.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	if record.user.Username != nil {
		delete(repo.store.usernames, *record.user.Username)
	}
	if record.user.Email != nil {
		delete(repo.store.emails, *record.user.Email)
	}
	delete(repo.store.passwords, id)
	delete(repo.store.users, id)

	return nil
}
