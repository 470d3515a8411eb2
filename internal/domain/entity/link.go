package entity

import (
	"time"

	"github.com/google/uuid"
)

// LinkRecord is a stored link between a local user and a remote account.
// A record is current while UnlinkedAt is nil. Records are never deleted:
// unlinking or relinking closes the record instead.
type LinkRecord struct {
	ID         uuid.UUID
	Key        RemoteAccountKey
	UserID     uuid.UUID
	LinkedAt   time.Time
	LinkedBy   uuid.UUID
	UnlinkedAt *time.Time
	UnlinkedBy *uuid.UUID
}

// IsCurrent reports whether the record is the active link for its key.
func (r *LinkRecord) IsCurrent() bool {
	return r.UnlinkedAt == nil
}

// LinkAction is the time and author of a link or unlink.
type LinkAction struct {
	Time time.Time
	User ShortUser
}

// Link is the resolved view of a LinkRecord.
type Link struct {
	Remote RemoteUser
	User   ShortUser
	Link   LinkAction
	Unlink *LinkAction // nil for the current link.
}

// VersionedLink is the current link of a key and its superseded predecessors,
// oldest first.
type VersionedLink struct {
	Current *Link
	Old     []Link
}

// VersionedLinks holds one slot per remote server.
type VersionedLinks struct {
	DinoparcCom   VersionedLink
	EnDinoparcCom VersionedLink
	SpDinoparcCom VersionedLink
	HammerfestFr  VersionedLink
	HfestNet      VersionedLink
	HammerfestEs  VersionedLink
	Twinoid       VersionedLink
}

// Slot returns the slot of a service server, or nil when the server is unknown.
func (v *VersionedLinks) Slot(service RemoteService, server string) *VersionedLink {
	switch service {
	case RemoteServiceDinoparc:
		switch server {
		case DinoparcServerCom:
			return &v.DinoparcCom
		case DinoparcServerEnCom:
			return &v.EnDinoparcCom
		case DinoparcServerSpCom:
			return &v.SpDinoparcCom
		}
	case RemoteServiceHammerfest:
		switch server {
		case HammerfestServerFr:
			return &v.HammerfestFr
		case HammerfestServerNet:
			return &v.HfestNet
		case HammerfestServerEs:
			return &v.HammerfestEs
		}
	case RemoteServiceTwinoid:
		if server == TwinoidServer {
			return &v.Twinoid
		}
	}

	return nil
}
