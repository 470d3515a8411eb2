package memory

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type sessionRepository struct {
	store *Store
}

// NewSessionRepository creates a SessionRepository over the store.
func NewSessionRepository(store *Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.sessions[session.ID]; ok {
		return errors.Errorf("session %s already exists", session.ID)
	}
	repo.store.sessions[session.ID] = session.Clone()

	return nil
}

// GetAndTouch returns a copy so callers never observe later touches.
func (repo *sessionRepository) GetAndTouch(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Session, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	session, ok := repo.store.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	if now.After(session.ATime) {
		session.ATime = now
	}

	return session.Clone(), nil
}

func (repo *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	delete(repo.store.sessions, id)

	return nil
}
