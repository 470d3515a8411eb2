package remote

import (
	"context"
	"sync"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
)

// TwinoidMemoryClient is an in-process Twinoid API used in development and tests.
type TwinoidMemoryClient struct {
	mu          sync.RWMutex
	users       map[string]string // id to display name
	tokens      map[string]string // access token to user id
	unavailable bool
}

// NewTwinoidMemoryClient creates an empty in-process Twinoid API.
func NewTwinoidMemoryClient() *TwinoidMemoryClient {
	return &TwinoidMemoryClient{
		users:  make(map[string]string),
		tokens: make(map[string]string),
	}
}

// CreateUser seeds an account.
func (c *TwinoidMemoryClient) CreateUser(id, displayName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.users[id] = displayName
}

// GrantAccessToken makes token resolve to the account id.
func (c *TwinoidMemoryClient) GrantAccessToken(token, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens[token] = id
}

// SetUnavailable makes every call fail with a RemoteUnavailable error.
func (c *TwinoidMemoryClient) SetUnavailable(unavailable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unavailable = unavailable
}

func (c *TwinoidMemoryClient) GetMe(_ context.Context, accessToken string) (*entity.RemoteUser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.unavailable {
		return nil, domainerrors.ErrRemoteUnavailable.WithDetails(entity.RemoteServiceTwinoid.String())
	}
	id, ok := c.tokens[accessToken]
	if !ok {
		return nil, domainerrors.ErrInvalidTwinoidToken
	}
	name, ok := c.users[id]
	if !ok {
		return nil, domainerrors.ErrInvalidTwinoidToken
	}

	return &entity.RemoteUser{Key: entity.TwinoidKey(id), Username: name}, nil
}
