package service

import (
	"time"

	"github.com/google/uuid"
)

// UUIDGenerator produces identifiers for new entities.
type UUIDGenerator interface {
	Next() uuid.UUID
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}
