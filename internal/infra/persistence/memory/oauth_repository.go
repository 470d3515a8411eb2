package memory

import (
	"context"
	"time"

	"etwin/internal/domain/entity"
	"etwin/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type oauthRepository struct {
	store *Store
}

// NewOauthRepository creates an OauthRepository over the store.
func NewOauthRepository(store *Store) repository.OauthRepository {
	return &oauthRepository{store: store}
}

func cloneClient(c *entity.OauthClient) *entity.OauthClient {
	clone := *c
	clone.Key = cloneString(c.Key)

	return &clone
}

func cloneAccessToken(t *entity.OauthAccessToken) *entity.OauthAccessToken {
	clone := *t
	clone.Client.Key = cloneString(t.Client.Key)

	return &clone
}

func (repo *oauthRepository) CreateClient(ctx context.Context, client *entity.OauthClient) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.oauthClients[client.ID]; ok {
		return errors.Errorf("oauth client %s already exists", client.ID)
	}
	if client.Key != nil {
		if _, taken := repo.store.clientKeys[*client.Key]; taken {
			return repository.ErrOauthClientKeyTaken
		}
		repo.store.clientKeys[*client.Key] = client.ID
	}
	repo.store.oauthClients[client.ID] = cloneClient(client)

	return nil
}

func (repo *oauthRepository) FindClientByID(ctx context.Context, id uuid.UUID) (*entity.OauthClient, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	client, ok := repo.store.oauthClients[id]
	if !ok {
		return nil, repository.ErrOauthClientNotFound
	}

	return cloneClient(client), nil
}

func (repo *oauthRepository) FindClientByKey(ctx context.Context, key string) (*entity.OauthClient, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	id, ok := repo.store.clientKeys[key]
	if !ok {
		return nil, repository.ErrOauthClientNotFound
	}

	return cloneClient(repo.store.oauthClients[id]), nil
}

func (repo *oauthRepository) CreateAccessToken(ctx context.Context, token *entity.OauthAccessToken) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.accessTokens[token.Key]; ok {
		return errors.New("access token key collision")
	}
	repo.store.accessTokens[token.Key] = cloneAccessToken(token)

	return nil
}

func (repo *oauthRepository) GetAndTouchAccessToken(ctx context.Context, key string, now time.Time) (*entity.OauthAccessToken, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	token, ok := repo.store.accessTokens[key]
	if !ok {
		return nil, repository.ErrAccessTokenNotFound
	}
	if now.After(token.ATime) {
		token.ATime = now
	}

	return cloneAccessToken(token), nil
}
