package services

import (
	"sync"

	"trackfit/utils"
)

// Identity supplies the user id that scopes every food API call.
type Identity interface {
	CurrentUserID() (uint, error)
}

// TokenSession is the default Identity: it holds the bearer token obtained
// from login and exposes the userId claim baked into it.
type TokenSession struct {
	mu     sync.RWMutex
	token  string
	userID uint
}

func NewTokenSession() *TokenSession {
	return &TokenSession{}
}

// SetToken validates the token and caches its userId claim.
func (s *TokenSession) SetToken(token string) error {
	userID, err := utils.ParseJWT(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.userID = userID
	s.mu.Unlock()
	return nil
}

// Clear drops the current session, e.g. on logout.
func (s *TokenSession) Clear() {
	s.mu.Lock()
	s.token = ""
	s.userID = 0
	s.mu.Unlock()
}

func (s *TokenSession) CurrentUserID() (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == 0 {
		return 0, ErrNoCurrentUser
	}
	return s.userID, nil
}

// Token returns the raw bearer token, empty when logged out.
func (s *TokenSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
