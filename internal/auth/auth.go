package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pppoed/internal/log"
	"pppoed/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserExists         = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Session is an authenticated login
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

type account struct {
	user model.User
	hash []byte
}

// Service manages user accounts and opaque session tokens. Accounts
// and sessions live in memory for the lifetime of the process.
type Service struct {
	mu       sync.RWMutex
	accounts map[string]*account // keyed by lowercase email
	sessions map[string]*Session // keyed by token
}

// NewService creates an empty auth service
func NewService() *Service {
	return &Service{
		accounts: make(map[string]*account),
		sessions: make(map[string]*Session),
	}
}

// Register creates a new user account
func (s *Service) Register(name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[email]; ok {
		return nil, ErrUserExists
	}

	user := model.User{
		ID:    generateID(),
		Name:  name,
		Email: email,
	}
	s.accounts[email] = &account{user: user, hash: hash}

	log.Info("user registered", "email", email)
	return &user, nil
}

// Login verifies credentials and opens a session
func (s *Service) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	acct, ok := s.accounts[email]
	s.mu.RUnlock()
	if !ok {
		// Burn a comparison so a missing account takes as long as a
		// wrong password
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = &Session{
		Token:     token,
		UserID:    acct.user.ID,
		CreatedAt: time.Now(),
	}
	s.mu.Unlock()

	log.Info("user logged in", "email", email)
	return token, nil
}

// Logout closes a session. Unknown tokens are not an error.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CurrentUser resolves a session token to its user
func (s *Service) CurrentUser(token string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	for _, acct := range s.accounts {
		if acct.user.ID == session.UserID {
			user := acct.user
			return &user, nil
		}
	}
	return nil, ErrSessionNotFound
}

// dummyHash is compared against for unknown accounts to keep login
// timing uniform
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pppoed-timing-pad"), bcrypt.DefaultCost)

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// generateID generates a UUIDv7 for a user
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
