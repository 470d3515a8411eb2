package remote

import (
	"context"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/service"
)

// HammerfestMemoryClient is an in-process Hammerfest used in development and tests.
type HammerfestMemoryClient struct {
	platform *memoryPlatform
}

// NewHammerfestMemoryClient creates an empty in-process Hammerfest.
func NewHammerfestMemoryClient(clock service.Clock) *HammerfestMemoryClient {
	return &HammerfestMemoryClient{
		platform: newMemoryPlatform(entity.RemoteServiceHammerfest, clock, domainerrors.ErrInvalidHammerfestCredentials),
	}
}

// CreateUser seeds an account on a server.
func (c *HammerfestMemoryClient) CreateUser(server, id, username, password string) error {
	return c.platform.createUser(server, id, username, password)
}

// SetUnavailable makes every call fail with a RemoteUnavailable error.
func (c *HammerfestMemoryClient) SetUnavailable(unavailable bool) {
	c.platform.setUnavailable(unavailable)
}

func (c *HammerfestMemoryClient) CreateSession(ctx context.Context, credentials entity.RemoteCredentials) (*entity.RemoteSession, error) {
	return c.platform.createSession(ctx, credentials)
}

func (c *HammerfestMemoryClient) TestSession(ctx context.Context, server, key string) (*entity.RemoteSession, error) {
	return c.platform.testSession(ctx, server, key)
}

func (c *HammerfestMemoryClient) GetProfileByID(ctx context.Context, server, userID string) (*entity.RemoteProfile, error) {
	return c.platform.getProfileByID(ctx, server, userID)
}
