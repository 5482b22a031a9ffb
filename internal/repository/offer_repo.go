package repository

import (
	"context"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
)

type CreateOfferInput struct {
	ItemID  int64
	BuyerID int64
	Amount  float64
	Note    *string
}

type OfferRepository struct {
	db DBTX
}

func NewOfferRepository(db DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, item_id, buyer_id, amount, note, status, created_at, updated_at`

func scanOffer(row interface{ Scan(dest ...any) error }, offer *models.Offer) error {
	return row.Scan(
		&offer.ID,
		&offer.ItemID,
		&offer.BuyerID,
		&offer.Amount,
		&offer.Note,
		&offer.Status,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
}

func (r *OfferRepository) Create(ctx context.Context, input CreateOfferInput) (*models.Offer, error) {
	query := `
		INSERT INTO offers (item_id, buyer_id, amount, note, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + offerColumns

	var offer models.Offer
	err := scanOffer(r.db.QueryRow(
		ctx,
		query,
		input.ItemID,
		input.BuyerID,
		input.Amount,
		input.Note,
	), &offer)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepository) GetByID(ctx context.Context, offerID int64) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	var offer models.Offer
	if err := scanOffer(r.db.QueryRow(ctx, query, offerID), &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepository) GetByIDForUpdate(ctx context.Context, offerID int64) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 FOR UPDATE`

	var offer models.Offer
	if err := scanOffer(r.db.QueryRow(ctx, query, offerID), &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepository) ListByItemID(ctx context.Context, itemID int64) ([]models.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, itemID)
}

func (r *OfferRepository) ListByBuyerID(ctx context.Context, buyerID int64) ([]models.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE buyer_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, buyerID)
}

func (r *OfferRepository) list(ctx context.Context, query string, arg any) ([]models.Offer, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]models.Offer, 0)
	for rows.Next() {
		var offer models.Offer
		if err := scanOffer(rows, &offer); err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}

func (r *OfferRepository) HasPendingOffer(ctx context.Context, itemID int64, buyerID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM offers
			WHERE item_id = $1 AND buyer_id = $2 AND status = 'pending'
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, itemID, buyerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *OfferRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	offerID int64,
	currentStatus string,
	nextStatus string,
) (*models.Offer, error) {
	query := `
		UPDATE offers
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + offerColumns

	var offer models.Offer
	if err := scanOffer(r.db.QueryRow(ctx, query, offerID, currentStatus, nextStatus), &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// DeclinePendingSiblings closes out every other pending offer on an item once
// one of them has been accepted.
func (r *OfferRepository) DeclinePendingSiblings(
	ctx context.Context,
	itemID int64,
	acceptedOfferID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE offers
		SET status = 'declined', updated_at = NOW()
		WHERE item_id = $1
		  AND id <> $2
		  AND status = 'pending'
	`, itemID, acceptedOfferID)
	return err
}
