package usecase

import (
	"context"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// LinkOptions describes a new link. Server is ignored for Twinoid.
type LinkOptions struct {
	UserID       uuid.UUID
	Server       string
	RemoteUserID string
	LinkedBy     uuid.UUID
}

// UnlinkOptions describes the link to close. Server is ignored for Twinoid.
type UnlinkOptions struct {
	UserID       uuid.UUID
	Server       string
	RemoteUserID string
	UnlinkedBy   uuid.UUID
}

// LinkUsecase maintains the versioned links between local users and remote
// accounts. It performs no permission checks: callers are trusted.
type LinkUsecase interface {
	GetLinkFromDinoparc(ctx context.Context, server, dparcUserID string) (*entity.VersionedLink, error)
	GetLinkFromHammerfest(ctx context.Context, server, hfUserID string) (*entity.VersionedLink, error)
	GetLinkFromTwinoid(ctx context.Context, tidUserID string) (*entity.VersionedLink, error)

	LinkToDinoparc(ctx context.Context, options LinkOptions) (*entity.VersionedLink, error)
	LinkToHammerfest(ctx context.Context, options LinkOptions) (*entity.VersionedLink, error)
	LinkToTwinoid(ctx context.Context, options LinkOptions) (*entity.VersionedLink, error)

	UnlinkFromDinoparc(ctx context.Context, options UnlinkOptions) (*entity.VersionedLink, error)
	UnlinkFromHammerfest(ctx context.Context, options UnlinkOptions) (*entity.VersionedLink, error)
	UnlinkFromTwinoid(ctx context.Context, options UnlinkOptions) (*entity.VersionedLink, error)

	GetVersionedLinks(ctx context.Context, userID uuid.UUID) (*entity.VersionedLinks, error)
}
