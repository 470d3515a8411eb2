package memory

import (
	"context"
	"slices"
	"sync"

	"etwin/internal/domain/repository"
)

// transactionManager runs units of work against the store. Writes apply
// immediately: a failed unit of work is not rolled back. Per-key locks taken
// by the unit of work are released when it returns.
type transactionManager struct {
	store *Store
}

// NewTransactionManager creates a TransactionManager over the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	scope := &lockScope{store: tm.store}
	defer scope.releaseAll()

	return fn(&repositoryFactory{store: tm.store, scope: scope})
}

// lockScope collects the unlock functions of one unit of work.
type lockScope struct {
	store   *Store
	mu      sync.Mutex
	held    map[string]struct{}
	unlocks []func()
}

// lock acquires the named lock once per scope.
func (s *lockScope) lock(name string) {
	s.mu.Lock()
	if _, ok := s.held[name]; ok {
		s.mu.Unlock()

		return
	}
	s.mu.Unlock()

	unlock := s.store.locks.Lock(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		s.held = make(map[string]struct{})
	}
	s.held[name] = struct{}{}
	s.unlocks = append(s.unlocks, unlock)
}

func (s *lockScope) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, unlock := range slices.Backward(s.unlocks) {
		unlock()
	}
	s.unlocks = nil
	s.held = nil
}

// repositoryFactory binds repositories to a lock scope.
type repositoryFactory struct {
	store *Store
	scope *lockScope
}

func (f *repositoryFactory) UserRepo() repository.UserRepository {
	return &userRepository{store: f.store}
}

func (f *repositoryFactory) AuthRepo() repository.AuthRepository {
	return &authRepository{store: f.store}
}

func (f *repositoryFactory) LinkRepo() repository.LinkRepository {
	return &linkRepository{store: f.store, scope: f.scope}
}
