package models

import "time"

type Conversation struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BuyerID   int64     `json:"buyer_id"`
	SellerID  int64     `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationSummary struct {
	Conversation
	ItemTitle     string       `json:"item_title"`
	ItemThumbnail *string      `json:"item_thumbnail,omitempty"`
	LastMessage   *ChatMessage `json:"last_message,omitempty"`
	UnreadCount   int          `json:"unread_count"`
}
