package auth

import (
	"strings"
	"sync"
	"time"
)

// TokenStore держит Google Fit access-токены в памяти по userID.
// Токены намеренно не персистятся: после рестарта пользователь
// проходит авторизацию заново. 401 от Fitness API сбрасывает токен.
type TokenStore struct {
	mu       sync.RWMutex
	tokens   map[string]string
	profiles map[string]userProfile
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens:   make(map[string]string),
		profiles: make(map[string]userProfile),
	}
}

func (s *TokenStore) SetFitnessToken(userID, accessToken string) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = accessToken
}

func (s *TokenStore) FitnessToken(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[strings.TrimSpace(userID)]
	return token, ok && token != ""
}

func (s *TokenStore) ClearFitnessToken(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, strings.TrimSpace(userID))
}

func (s *TokenStore) SetProfile(userID string, info googleUserInfo) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = userProfile{
		Email:     info.Email,
		Name:      info.Name,
		UpdatedAt: time.Now(),
	}
}

func (s *TokenStore) Profile(userID string) (userProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[strings.TrimSpace(userID)]
	return profile, ok
}
