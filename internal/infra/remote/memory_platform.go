// Package remote provides the clients of the legacy game platforms.
package remote

import (
	"context"
	"strings"
	"sync"

	"etwin/internal/domain/entity"
	domainerrors "etwin/internal/domain/errors"
	"etwin/internal/domain/service"

	"github.com/google/uuid"
)

const sessionKeyLength = 26

type memoryAccount struct {
	id       string
	username string
	password string
}

type memoryServer struct {
	accounts   map[string]*memoryAccount // by id
	byUsername map[string]*memoryAccount
	sessions   map[string]*entity.RemoteSession // by session key
}

// memoryPlatform simulates the servers of a username/password platform.
// Hammerfest and Dinoparc only differ by their servers and error values.
type memoryPlatform struct {
	mu                 sync.RWMutex
	service            entity.RemoteService
	servers            map[string]*memoryServer
	clock              service.Clock
	invalidCredentials *domainerrors.BaseError
	unavailable        bool
}

func newMemoryPlatform(remoteService entity.RemoteService, clock service.Clock, invalidCredentials *domainerrors.BaseError) *memoryPlatform {
	servers := make(map[string]*memoryServer)
	for _, server := range remoteService.Servers() {
		servers[server] = &memoryServer{
			accounts:   make(map[string]*memoryAccount),
			byUsername: make(map[string]*memoryAccount),
			sessions:   make(map[string]*entity.RemoteSession),
		}
	}

	return &memoryPlatform{
		service:            remoteService,
		servers:            servers,
		clock:              clock,
		invalidCredentials: invalidCredentials,
	}
}

func (p *memoryPlatform) server(name string) (*memoryServer, error) {
	server, ok := p.servers[name]
	if !ok {
		return nil, domainerrors.ErrInvalidInput.WithDetails("unknown " + p.service.String() + " server: " + name)
	}

	return server, nil
}

func (p *memoryPlatform) remoteUser(server string, account *memoryAccount) entity.RemoteUser {
	return entity.RemoteUser{
		Key:      entity.RemoteAccountKey{Service: p.service, Server: server, RemoteID: account.id},
		Username: account.username,
	}
}

func (p *memoryPlatform) createUser(server, id, username, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.server(server)
	if err != nil {
		return err
	}
	if _, taken := s.accounts[id]; taken {
		return domainerrors.ErrInvalidInput.WithDetails("remote id already exists: " + id)
	}
	if _, taken := s.byUsername[username]; taken {
		return domainerrors.ErrInvalidInput.WithDetails("remote username already exists: " + username)
	}
	account := &memoryAccount{id: id, username: username, password: password}
	s.accounts[id] = account
	s.byUsername[username] = account

	return nil
}

func (p *memoryPlatform) setUnavailable(unavailable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.unavailable = unavailable
}

func (p *memoryPlatform) createSession(_ context.Context, credentials entity.RemoteCredentials) (*entity.RemoteSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable {
		return nil, domainerrors.ErrRemoteUnavailable.WithDetails(p.service.String())
	}
	s, err := p.server(credentials.Server)
	if err != nil {
		return nil, err
	}
	account, ok := s.byUsername[credentials.Username]
	if !ok || account.password != credentials.Password {
		return nil, p.invalidCredentials.WithDetails(credentials.Username)
	}

	now := p.clock.Now()
	session := &entity.RemoteSession{
		Key:   newSessionKey(),
		User:  p.remoteUser(credentials.Server, account),
		CTime: now,
		ATime: now,
	}
	s.sessions[session.Key] = session
	result := *session

	return &result, nil
}

func (p *memoryPlatform) testSession(_ context.Context, server, key string) (*entity.RemoteSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable {
		return nil, domainerrors.ErrRemoteUnavailable.WithDetails(p.service.String())
	}
	s, err := p.server(server)
	if err != nil {
		return nil, err
	}
	session, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	session.ATime = p.clock.Now()
	result := *session

	return &result, nil
}

func (p *memoryPlatform) getProfileByID(_ context.Context, server, userID string) (*entity.RemoteProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.unavailable {
		return nil, domainerrors.ErrRemoteUnavailable.WithDetails(p.service.String())
	}
	s, err := p.server(server)
	if err != nil {
		return nil, err
	}
	account, ok := s.accounts[userID]
	if !ok {
		return nil, nil
	}

	return &entity.RemoteProfile{User: p.remoteUser(server, account)}, nil
}

func newSessionKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionKeyLength]
}
