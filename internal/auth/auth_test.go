package auth

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	s := NewService()

	user, err := s.Register("Alice", "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected generated user ID")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("unexpected email %q", user.Email)
	}

	token, err := s.Login("alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected session token")
	}

	got, err := s.CurrentUser(token)
	if err != nil {
		t.Fatalf("resolving session: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("session resolves to %s, want %s", got.ID, user.ID)
	}
}

func TestRegister_EmailNormalized(t *testing.T) {
	s := NewService()

	if _, err := s.Register("Alice", "  Alice@Example.COM ", "password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Case and whitespace variants hit the same account
	if _, err := s.Register("Mallory", "alice@example.com", "password456"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
	if _, err := s.Login("ALICE@example.com", "password123"); err != nil {
		t.Errorf("login with different casing failed: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	s := NewService()

	if _, err := s.Register("NoEmail", "", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for empty email, got %v", err)
	}
	if _, err := s.Register("Short", "short@example.com", "1234567"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := NewService()
	s.Register("Alice", "alice@example.com", "password123")

	if _, err := s.Login("alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownAccount(t *testing.T) {
	s := NewService()
	if _, err := s.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	s := NewService()
	s.Register("Alice", "alice@example.com", "password123")
	token, err := s.Login("alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	s.Logout(token)
	if _, err := s.CurrentUser(token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}

	// Logging out twice is not an error
	s.Logout(token)
}

func TestSessionsAreIndependent(t *testing.T) {
	s := NewService()
	s.Register("Alice", "alice@example.com", "password123")

	first, _ := s.Login("alice@example.com", "password123")
	second, _ := s.Login("alice@example.com", "password123")
	if first == second {
		t.Fatal("expected distinct tokens per login")
	}

	s.Logout(first)
	if _, err := s.CurrentUser(second); err != nil {
		t.Errorf("second session should survive: %v", err)
	}
}
