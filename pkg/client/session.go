package client

import (
	"sync"

	"github.com/outfitly/storefront-api/pkg/models"
)

// Session is the client-side authentication state: the access token and a
// cached copy of the logged-in user's profile. It has an explicit
// lifecycle (login populates it, logout clears it) instead of living in
// ambient mutable storage.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the cached profile, or nil before login.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) setUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// clear tears the session down; every field is wiped, matching the
// logout-clears-everything behavior of the storefront UI.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}
