package repository

import (
	"context"
	"database/sql"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateOrGet opens the conversation a buyer has about an item, or returns
// the existing one. One thread per (item, buyer) pair.
func (r *ConversationRepository) CreateOrGet(
	ctx context.Context,
	itemID int64,
	buyerID int64,
	sellerID int64,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (item_id, buyer_id, seller_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, buyer_id)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, item_id, buyer_id, seller_id, created_at, updated_at
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, itemID, buyerID, sellerID).Scan(
		&conversation.ID,
		&conversation.ItemID,
		&conversation.BuyerID,
		&conversation.SellerID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *ConversationRepository) GetByIDForParticipant(
	ctx context.Context,
	conversationID int64,
	participantID int64,
) (*models.Conversation, error) {
	query := `
		SELECT id, item_id, buyer_id, seller_id, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND (buyer_id = $2 OR seller_id = $2)
	`

	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID, participantID).Scan(
		&conversation.ID,
		&conversation.ItemID,
		&conversation.BuyerID,
		&conversation.SellerID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id,
			c.item_id,
			c.buyer_id,
			c.seller_id,
			c.created_at,
			c.updated_at,
			i.title,
			fi.url,
			lm.id,
			lm.conversation_id,
			lm.sender_id,
			lm.content,
			lm.is_read,
			lm.created_at,
			COALESCE(uc.unread_count, 0)
		FROM conversations c
		JOIN items i ON i.id = c.item_id
		LEFT JOIN LATERAL (
			SELECT url
			FROM item_images
			WHERE item_id = c.item_id
			ORDER BY position ASC, id ASC
			LIMIT 1
		) fi ON TRUE
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE conversation_id = c.id
			  AND sender_id <> $1
			  AND is_read = FALSE
		) uc ON TRUE
		WHERE c.buyer_id = $1 OR c.seller_id = $1
		ORDER BY COALESCE(lm.created_at, c.updated_at, c.created_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var messageID sql.NullInt64
		var messageConversationID sql.NullInt64
		var messageSenderID sql.NullInt64
		var messageContent sql.NullString
		var messageIsRead sql.NullBool
		var messageCreatedAt sql.NullTime

		if err := rows.Scan(
			&summary.ID,
			&summary.ItemID,
			&summary.BuyerID,
			&summary.SellerID,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.ItemTitle,
			&summary.ItemThumbnail,
			&messageID,
			&messageConversationID,
			&messageSenderID,
			&messageContent,
			&messageIsRead,
			&messageCreatedAt,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}

		if messageID.Valid {
			summary.LastMessage = &models.ChatMessage{
				ID:             messageID.Int64,
				ConversationID: messageConversationID.Int64,
				SenderID:       messageSenderID.Int64,
				Content:        messageContent.String,
				IsRead:         messageIsRead.Bool,
				CreatedAt:      messageCreatedAt.Time,
			}
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}
