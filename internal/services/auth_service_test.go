package services

import (
	"errors"
	"testing"

	"portfolio-tracker/internal/models"
)

func TestRegister_CreatesUserWithDefaultPortfolio(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "secret123"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("user ID not assigned")
	}
	if user.Password == "secret123" {
		t.Error("password stored in plaintext")
	}

	var portfolios []models.Portfolio
	if err := db.Where("user_id = ?", user.ID).Find(&portfolios).Error; err != nil {
		t.Fatalf("load portfolios: %v", err)
	}
	if len(portfolios) != 1 || portfolios[0].Name != "My Portfolio" {
		t.Errorf("portfolios = %+v, want one default portfolio", portfolios)
	}
}

func TestRegister_DuplicateUsernameOrEmail(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db)

	first := &models.User{Username: "alice", Email: "alice@example.com", Password: "secret123"}
	if err := svc.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name string
		user models.User
	}{
		{"same username", models.User{Username: "alice", Email: "other@example.com", Password: "x"}},
		{"same email", models.User{Username: "bob", Email: "alice@example.com", Password: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Register(&tc.user)
			if !errors.Is(err, ErrConflict) {
				t.Errorf("register = %v, want ErrConflict", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "secret123"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Login("alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("username = %s, want alice", got.Username)
	}
	if got.Password != "" {
		t.Error("login response leaks password hash")
	}

	if _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("bad password = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown user = %v, want ErrUnauthorized", err)
	}
}

func TestGetUserByID(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "secret123"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %s", got.Email)
	}

	if _, err := svc.GetUserByID(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user = %v, want ErrNotFound", err)
	}
}
