package memory

import (
	"context"
	"slices"
	"time"

	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// errNoLockScope is returned when a lock is requested outside of a unit of work.
var errNoLockScope = errors.New("link locks require a transaction")

type linkRepository struct {
	store *Store
	scope *lockScope // nil outside of a transaction.
}

// NewLinkRepository creates a read-side LinkRepository over the store. Writers
// get their repository from the TransactionManager.
func NewLinkRepository(store *Store) repository.LinkRepository {
	return &linkRepository{store: store}
}

func remoteLockName(key entity.RemoteAccountKey) string {
	return "remote:" + key.String()
}

func userServerLockName(userID uuid.UUID, service entity.RemoteService, server string) string {
	return "user:" + userID.String() + "/" + string(service) + "/" + server
}

func (repo *linkRepository) LockRemote(ctx context.Context, key entity.RemoteAccountKey) error {
	if repo.scope == nil {
		return errNoLockScope
	}
	repo.scope.lock(remoteLockName(key))

	return nil
}

func (repo *linkRepository) LockUserServer(ctx context.Context, userID uuid.UUID, service entity.RemoteService, server string) error {
	if repo.scope == nil {
		return errNoLockScope
	}
	repo.scope.lock(userServerLockName(userID, service, server))

	return nil
}

func (repo *linkRepository) FindCurrentByRemote(ctx context.Context, key entity.RemoteAccountKey) (*entity.LinkRecord, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	for _, record := range repo.store.links {
		if record.Key == key && record.IsCurrent() {
			return cloneLink(record), nil
		}
	}

	return nil, repository.ErrLinkNotFound
}

func (repo *linkRepository) FindCurrentByUserServer(ctx context.Context, userID uuid.UUID, service entity.RemoteService, server string) (*entity.LinkRecord, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	for _, record := range repo.store.links {
		if record.UserID == userID && record.Key.Service == service && record.Key.Server == server && record.IsCurrent() {
			return cloneLink(record), nil
		}
	}

	return nil, repository.ErrLinkNotFound
}

func (repo *linkRepository) ListClosedByRemote(ctx context.Context, key entity.RemoteAccountKey) ([]*entity.LinkRecord, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	var closed []*entity.LinkRecord
	for _, record := range repo.store.links {
		if record.Key == key && !record.IsCurrent() {
			closed = append(closed, cloneLink(record))
		}
	}
	slices.SortStableFunc(closed, func(a, b *entity.LinkRecord) int {
		return a.LinkedAt.Compare(b.LinkedAt)
	})

	return closed, nil
}

func (repo *linkRepository) ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]*entity.LinkRecord, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	var current []*entity.LinkRecord
	for _, record := range repo.store.links {
		if record.UserID == userID && record.IsCurrent() {
			current = append(current, cloneLink(record))
		}
	}

	return current, nil
}

// Create enforces a single current record per remote account and per user
// server, whatever locks the caller holds.
func (repo *linkRepository) Create(ctx context.Context, record *entity.LinkRecord) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, existing := range repo.store.links {
		if !existing.IsCurrent() {
			continue
		}
		if existing.Key == record.Key {
			return errors.Errorf("remote account %s already has a current link", record.Key)
		}
		if existing.UserID == record.UserID && existing.Key.Service == record.Key.Service && existing.Key.Server == record.Key.Server {
			return errors.Errorf("user %s already has a current link on %s/%s", record.UserID, record.Key.Service, record.Key.Server)
		}
	}
	repo.store.links = append(repo.store.links, cloneLink(record))

	return nil
}

func (repo *linkRepository) Close(ctx context.Context, id uuid.UUID, unlinkedAt time.Time, unlinkedBy uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	for _, record := range repo.store.links {
		if record.ID == id && record.IsCurrent() {
			record.UnlinkedAt = &unlinkedAt
			record.UnlinkedBy = &unlinkedBy

			return nil
		}
	}

	return repository.ErrLinkNotFound
}
