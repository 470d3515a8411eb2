package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the proof of a local authentication. Its id is the bearer secret.
type Session struct {
	ID    uuid.UUID
	User  ShortUser // Snapshot taken when the session was created.
	CTime time.Time
	ATime time.Time // Advanced on every authenticated request.
}

// Clone returns a copy that shares no state with the receiver.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s

	return &clone
}

// UserAndSession is returned by every successful login or registration.
type UserAndSession struct {
	User            *User
	IsAdministrator bool
	Session         *Session
}
