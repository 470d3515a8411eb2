package remote

import (
	"context"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/service"
)

// DinoparcMemoryClient is an in-process Dinoparc used in development and tests.
type DinoparcMemoryClient struct {
	platform *memoryPlatform
}

// NewDinoparcMemoryClient creates an empty in-process Dinoparc.
func NewDinoparcMemoryClient(clock service.Clock) *DinoparcMemoryClient {
	return &DinoparcMemoryClient{
		platform: newMemoryPlatform(entity.RemoteServiceDinoparc, clock, domainerrors.ErrInvalidDinoparcCredentials),
	}
}

// CreateUser seeds an account on a server.
func (c *DinoparcMemoryClient) CreateUser(server, id, username, password string) error {
	return c.platform.createUser(server, id, username, password)
}

// SetUnavailable makes every call fail with a RemoteUnavailable error.
func (c *DinoparcMemoryClient) SetUnavailable(unavailable bool) {
	c.platform.setUnavailable(unavailable)
}

func (c *DinoparcMemoryClient) CreateSession(ctx context.Context, credentials entity.RemoteCredentials) (*entity.RemoteSession, error) {
	return c.platform.createSession(ctx, credentials)
}

func (c *DinoparcMemoryClient) TestSession(ctx context.Context, server, key string) (*entity.RemoteSession, error) {
	return c.platform.testSession(ctx, server, key)
}

func (c *DinoparcMemoryClient) GetProfileByID(ctx context.Context, server, userID string) (*entity.RemoteProfile, error) {
	return c.platform.getProfileByID(ctx, server, userID)
}
