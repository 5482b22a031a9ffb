package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/services"
	chatws "github.com/huskymarket/HuskyMarketBack/internal/websocket"
	"github.com/jackc/pgx/v5"
)

type stubChatService struct {
	conversationsResult []models.ConversationSummary
	conversationsErr    error
	openResult          *models.Conversation
	openErr             error
	messagesResult      []models.ChatMessage
	messagesTotal       int
	messagesErr         error
	sendResult          *services.ChatDelivery
	sendErr             error
	lastActorID         int64
	lastItemID          int64
	lastConversationID  int64
	lastContent         string
	lastPage            int
	lastLimit           int
}

func (s *stubChatService) ListConversations(_ context.Context, actorID int64) ([]models.ConversationSummary, error) {
	s.lastActorID = actorID
	return s.conversationsResult, s.conversationsErr
}

func (s *stubChatService) OpenConversation(_ context.Context, actorID int64, itemID int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastItemID = itemID
	return s.openResult, s.openErr
}

func (s *stubChatService) ListMessages(_ context.Context, actorID int64, conversationID int64, page int, limit int) ([]models.ChatMessage, int, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	s.lastPage = page
	s.lastLimit = limit
	return s.messagesResult, s.messagesTotal, s.messagesErr
}

func (s *stubChatService) SendMessage(_ context.Context, actorID int64, conversationID int64, content string) (*services.ChatDelivery, error) {
	s.lastActorID = actorID
	s.lastConversationID = conversationID
	s.lastContent = content
	return s.sendResult, s.sendErr
}

func newChatTestApp(handler func(*fiber.Ctx) error, method, path string, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Add(method, path, handler)
	return app
}

func TestListConversationsReturnsConversationSummaries(t *testing.T) {
	service := &stubChatService{
		conversationsResult: []models.ConversationSummary{
			{
				Conversation: models.Conversation{ID: 17, ItemID: 3, BuyerID: 42, SellerID: 8},
				ItemTitle:    "CSE 143 textbook",
				LastMessage: &models.ChatMessage{
					ID:             3,
					ConversationID: 17,
					SenderID:       8,
					Content:        "Still available?",
					CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
				},
				UnreadCount: 2,
			},
		},
	}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler.ListConversations, http.MethodGet, "/api/v1/conversations", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 {
		t.Fatalf("unexpected actor id: %d", service.lastActorID)
	}

	var body struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Conversations) != 1 || body.Conversations[0].UnreadCount != 2 {
		t.Fatalf("unexpected response: %+v", body.Conversations)
	}
}

func TestOpenConversationReturnsCreatedConversation(t *testing.T) {
	service := &stubChatService{
		openResult: &models.Conversation{ID: 9, ItemID: 7, BuyerID: 42, SellerID: 8},
	}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler.OpenConversation, http.MethodPost, "/api/v1/conversations", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"item_id":7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastItemID != 7 {
		t.Fatalf("expected item id 7, got %d", service.lastItemID)
	}
}

func TestOpenConversationRejectsOwnListing(t *testing.T) {
	service := &stubChatService{openErr: services.ErrInvalidInput}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler.OpenConversation, http.MethodPost, "/api/v1/conversations", "8")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"item_id":7}`))
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

func TestGetMessagesReturnsPagination(t *testing.T) {
	service := &stubChatService{
		messagesResult: []models.ChatMessage{
			{ID: 5, ConversationID: 11, SenderID: 7, Content: "Hi", CreatedAt: time.Now().UTC()},
		},
		messagesTotal: 12,
	}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler.GetMessages, http.MethodGet, "/api/v1/conversations/:id/messages", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/11/messages?page=2&limit=5", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 11 || service.lastPage != 2 || service.lastLimit != 5 {
		t.Fatalf("unexpected forwarded pagination: conversation=%d page=%d limit=%d", service.lastConversationID, service.lastPage, service.lastLimit)
	}

	var body struct {
		Messages   []models.ChatMessage  `json:"messages"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Messages) != 1 || body.Pagination.Total != 12 || body.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected response body: %+v %+v", body.Messages, body.Pagination)
	}
}

func TestGetMessagesReturnsNotFound(t *testing.T) {
	service := &stubChatService{messagesErr: pgx.ErrNoRows}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler.GetMessages, http.MethodGet, "/api/v1/conversations/:id/messages", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/99/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSendMessageReturnsCreatedMessage(t *testing.T) {
	delivery := &services.ChatDelivery{
		Conversation: &models.Conversation{ID: 11, ItemID: 3, BuyerID: 42, SellerID: 7},
		Message: &models.ChatMessage{
			ID:             6,
			ConversationID: 11,
			SenderID:       42,
			Content:        "Can you do $20?",
			CreatedAt:      time.Now().UTC(),
		},
		RecipientID: 7,
	}
	service := &stubChatService{sendResult: delivery}
	hub := chatws.NewHub()
	go hub.Run()
	handler := NewChatHandler(service, hub, "secret")

	app := newChatTestApp(handler.SendMessage, http.MethodPost, "/api/v1/conversations/:id/messages", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/11/messages", strings.NewReader(`{"content":"Can you do $20?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 11 || service.lastContent != "Can you do $20?" {
		t.Fatalf("unexpected forwarded message: conversation=%d content=%q", service.lastConversationID, service.lastContent)
	}
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	service := &stubChatService{sendErr: services.ErrForbidden}
	handler := NewChatHandler(service, chatws.NewHub(), "secret")

	app := newChatTestApp(handler.SendMessage, http.MethodPost, "/api/v1/conversations/:id/messages", "99")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/11/messages", strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
