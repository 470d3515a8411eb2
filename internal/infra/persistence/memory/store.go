// Package memory keeps every store in process memory. Data lives from process
// start to process end.
package memory

import (
	"sync"
	"time"

	"etwin/internal/domain/entity"

	"codeberg.org/gruf/go-mutexes"
	"github.com/google/uuid"
)

type userRecord struct {
	user         entity.User
	displayNames []displayNameVersion
}

type displayNameVersion struct {
	value string
	since time.Time
}

type passwordRecord struct {
	hash      string
	updatedAt time.Time
}

type remoteUserRecord struct {
	user      entity.RemoteUser
	createdAt time.Time
	updatedAt time.Time
}

// remoteSessionKey identifies a session key on a server.
type remoteSessionKey struct {
	service entity.RemoteService
	server  string
	key     string
}

// Store holds the state shared by the in-memory repositories.
type Store struct {
	mu sync.RWMutex

	users     map[uuid.UUID]*userRecord
	usernames map[string]uuid.UUID
	emails    map[string]uuid.UUID

	passwords     map[uuid.UUID]passwordRecord
	verifications []entity.EmailVerification

	sessions map[uuid.UUID]*entity.Session

	links []*entity.LinkRecord // Insertion order.

	remoteUsers map[entity.RemoteAccountKey]*remoteUserRecord

	remoteSessions    map[entity.RemoteAccountKey]*entity.RemoteSession
	remoteSessionKeys map[remoteSessionKey]entity.RemoteAccountKey
	twinoidTokens     map[string]*entity.TwinoidOauthToken

	oauthClients map[uuid.UUID]*entity.OauthClient
	clientKeys   map[string]uuid.UUID
	accessTokens map[string]*entity.OauthAccessToken

	// locks serializes writers of a key across transactions.
	locks mutexes.MutexMap
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:             make(map[uuid.UUID]*userRecord),
		usernames:         make(map[string]uuid.UUID),
		emails:            make(map[string]uuid.UUID),
		passwords:         make(map[uuid.UUID]passwordRecord),
		sessions:          make(map[uuid.UUID]*entity.Session),
		remoteUsers:       make(map[entity.RemoteAccountKey]*remoteUserRecord),
		remoteSessions:    make(map[entity.RemoteAccountKey]*entity.RemoteSession),
		remoteSessionKeys: make(map[remoteSessionKey]entity.RemoteAccountKey),
		twinoidTokens:     make(map[string]*entity.TwinoidOauthToken),
		oauthClients:      make(map[uuid.UUID]*entity.OauthClient),
		clientKeys:        make(map[string]uuid.UUID),
		accessTokens:      make(map[string]*entity.OauthAccessToken),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s

	return &c
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Username = cloneString(u.Username)
	c.Email = cloneString(u.Email)

	return &c
}

func cloneLink(r *entity.LinkRecord) *entity.LinkRecord {
	c := *r
	if r.UnlinkedAt != nil {
		t := *r.UnlinkedAt
		c.UnlinkedAt = &t
	}
	if r.UnlinkedBy != nil {
		id := *r.UnlinkedBy
		c.UnlinkedBy = &id
	}

	return &c
}
