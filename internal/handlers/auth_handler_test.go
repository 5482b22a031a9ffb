package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/pkg/utils"
	"github.com/jackc/pgx/v5"
)

type stubUserStore struct {
	createErr   error
	getByEmail  *models.User
	getEmailErr error
	getByID     *models.User
	getIDErr    error
	created     *models.User
}

func (s *stubUserStore) CreateUser(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = 42
	s.created = user
	return nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	if s.getEmailErr != nil {
		return nil, s.getEmailErr
	}
	return s.getByEmail, nil
}

func (s *stubUserStore) GetByID(_ context.Context, _ int64) (*models.User, error) {
	if s.getIDErr != nil {
		return nil, s.getIDErr
	}
	return s.getByID, nil
}

func TestRegisterMarksCampusEmailVerified(t *testing.T) {
	store := &stubUserStore{getEmailErr: pgx.ErrNoRows}
	handler := NewAuthHandler(store, "secret", "uw.edu")

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)

	payload := `{"email":"dana@uw.edu","password":"correct-horse","display_name":"Dana","campus_id":"dwest"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if store.created == nil || !store.created.IsVerified {
		t.Fatalf("expected campus email to be verified, got %+v", store.created)
	}

	var body struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected a token in the response")
	}

	claims, err := utils.ValidateToken(body.Token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "42" {
		t.Fatalf("expected token for user 42, got %q", claims.UserID)
	}
}

func TestRegisterLeavesOffCampusEmailUnverified(t *testing.T) {
	store := &stubUserStore{getEmailErr: pgx.ErrNoRows}
	handler := NewAuthHandler(store, "secret", "uw.edu")

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)

	payload := `{"email":"dana@gmail.com","password":"correct-horse","display_name":"Dana","campus_id":"dwest"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if store.created == nil || store.created.IsVerified {
		t.Fatalf("expected off-campus email to stay unverified, got %+v", store.created)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := &stubUserStore{getByEmail: &models.User{ID: 7, Email: "dana@uw.edu"}}
	handler := NewAuthHandler(store, "secret", "uw.edu")

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)

	payload := `{"email":"dana@uw.edu","password":"correct-horse","display_name":"Dana","campus_id":"dwest"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	handler := NewAuthHandler(&stubUserStore{}, "secret", "uw.edu")

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)

	payload := `{"email":"dana@uw.edu","password":"short","display_name":"Dana","campus_id":"dwest"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store := &stubUserStore{
		getByEmail: &models.User{ID: 7, Email: "dana@uw.edu", PasswordHash: hash},
	}
	handler := NewAuthHandler(store, "secret", "uw.edu")

	app := fiber.New()
	app.Post("/api/auth/login", handler.Login)

	payload := `{"email":"dana@uw.edu","password":"battery-staple"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginReturnsTokenForValidCredentials(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store := &stubUserStore{
		getByEmail: &models.User{ID: 7, Email: "dana@uw.edu", PasswordHash: hash},
	}
	handler := NewAuthHandler(store, "secret", "uw.edu")

	app := fiber.New()
	app.Post("/api/auth/login", handler.Login)

	payload := `{"email":"dana@uw.edu","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected a token in the response")
	}
}
