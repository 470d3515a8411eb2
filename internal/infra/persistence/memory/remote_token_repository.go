package memory

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"
)

type remoteTokenRepository struct {
	store *Store
}

// NewRemoteTokenRepository creates a RemoteTokenRepository over the store.
func NewRemoteTokenRepository(store *Store) repository.RemoteTokenRepository {
	return &remoteTokenRepository{store: store}
}

func (repo *remoteTokenRepository) TouchSession(ctx context.Context, session *entity.RemoteSession, now time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	account := session.User.Key
	sessionKey := remoteSessionKey{service: account.Service, server: account.Server, key: session.Key}

	// A key moves to the account it was last observed for.
	if previousOwner, ok := repo.store.remoteSessionKeys[sessionKey]; ok && previousOwner != account {
		delete(repo.store.remoteSessions, previousOwner)
	}
	// An account keeps a single key.
	if previous, ok := repo.store.remoteSessions[account]; ok && previous.Key != session.Key {
		delete(repo.store.remoteSessionKeys, remoteSessionKey{service: account.Service, server: account.Server, key: previous.Key})
	}

	stored := *session
	if previous, ok := repo.store.remoteSessions[account]; ok && previous.Key == session.Key {
		stored.CTime = previous.CTime
	}
	stored.ATime = now
	repo.store.remoteSessions[account] = &stored
	repo.store.remoteSessionKeys[sessionKey] = account

	return nil
}

func (repo *remoteTokenRepository) RevokeSession(ctx context.Context, service entity.RemoteService, server, key string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	sessionKey := remoteSessionKey{service: service, server: server, key: key}
	if owner, ok := repo.store.remoteSessionKeys[sessionKey]; ok {
		delete(repo.store.remoteSessions, owner)
		delete(repo.store.remoteSessionKeys, sessionKey)
	}

	return nil
}

func (repo *remoteTokenRepository) FindSession(ctx context.Context, key entity.RemoteAccountKey) (*entity.RemoteSession, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	session, ok := repo.store.remoteSessions[key]
	if !ok {
		return nil, repository.ErrRemoteTokenNotFound
	}
	c := *session

	return &c, nil
}

func (repo *remoteTokenRepository) TouchTwinoidOauth(ctx context.Context, token *entity.TwinoidOauthToken, now time.Time) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	c := *token
	c.RefreshToken = cloneString(token.RefreshToken)
	repo.store.twinoidTokens[token.TwinoidUserID] = &c

	return nil
}

func (repo *remoteTokenRepository) FindTwinoidOauth(ctx context.Context, twinoidUserID string) (*entity.TwinoidOauthToken, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	token, ok := repo.store.twinoidTokens[twinoidUserID]
	if !ok {
		return nil, repository.ErrRemoteTokenNotFound
	}
	c := *token
	c.RefreshToken = cloneString(token.RefreshToken)

	return &c, nil
}
