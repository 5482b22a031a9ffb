package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type offerStore interface {
	Create(ctx context.Context, input repository.CreateOfferInput) (*models.Offer, error)
	GetByID(ctx context.Context, offerID int64) (*models.Offer, error)
	ListByItemID(ctx context.Context, itemID int64) ([]models.Offer, error)
	ListByBuyerID(ctx context.Context, buyerID int64) ([]models.Offer, error)
	HasPendingOffer(ctx context.Context, itemID int64, buyerID int64) (bool, error)
	UpdateStatusIfCurrent(ctx context.Context, offerID int64, currentStatus, nextStatus string) (*models.Offer, error)
}

type OfferService struct {
	db        *pgxpool.Pool
	offerRepo offerStore
	itemRepo  itemReader
}

func NewOfferService(
	db *pgxpool.Pool,
	offerRepo *repository.OfferRepository,
	itemRepo itemReader,
) *OfferService {
	return &OfferService{
		db:        db,
		offerRepo: offerRepo,
		itemRepo:  itemRepo,
	}
}

type PlaceOfferInput struct {
	ItemID int64
	Amount float64
	Note   *string
}

func (s *OfferService) PlaceOffer(
	ctx context.Context,
	buyerID int64,
	input PlaceOfferInput,
) (*models.Offer, error) {
	if buyerID <= 0 || input.ItemID <= 0 || input.Amount <= 0 {
		return nil, ErrInvalidInput
	}

	item, err := s.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, mapItemLookupErr(err)
	}
	if item.SellerID == buyerID {
		return nil, ErrInvalidInput
	}
	if item.Status != "available" {
		return nil, ErrItemUnavailable
	}

	hasPending, err := s.offerRepo.HasPendingOffer(ctx, input.ItemID, buyerID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, ErrConflict
	}

	var note *string
	if input.Note != nil {
		trimmed := strings.TrimSpace(*input.Note)
		if trimmed != "" {
			note = &trimmed
		}
	}

	return s.offerRepo.Create(ctx, repository.CreateOfferInput{
		ItemID:  input.ItemID,
		BuyerID: buyerID,
		Amount:  input.Amount,
		Note:    note,
	})
}

// ListForItem returns the offers on a listing; only its seller may look.
func (s *OfferService) ListForItem(
	ctx context.Context,
	actorID int64,
	itemID int64,
) ([]models.Offer, error) {
	if actorID <= 0 || itemID <= 0 {
		return nil, ErrInvalidInput
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, mapItemLookupErr(err)
	}
	if item.SellerID != actorID {
		return nil, ErrForbidden
	}

	return s.offerRepo.ListByItemID(ctx, itemID)
}

func (s *OfferService) ListMine(ctx context.Context, buyerID int64) ([]models.Offer, error) {
	if buyerID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.offerRepo.ListByBuyerID(ctx, buyerID)
}

// UpdateStatus moves an offer through its state machine. The seller accepts
// or declines, the buyer withdraws; every transition starts from pending.
// Accepting closes the sale: sibling pending offers are declined and the
// item flips to sold, all in one transaction.
func (s *OfferService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	offerID int64,
	requestedStatus string,
) (*models.Offer, error) {
	if actorID <= 0 || offerID <= 0 {
		return nil, ErrInvalidInput
	}

	nextStatus, err := normalizeOfferStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, offer.ItemID)
	if err != nil {
		return nil, mapItemLookupErr(err)
	}

	switch nextStatus {
	case "withdrawn":
		if offer.BuyerID != actorID {
			return nil, ErrForbidden
		}
	case "accepted", "declined":
		if item.SellerID != actorID {
			return nil, ErrForbidden
		}
	}
	if offer.Status != "pending" {
		return nil, ErrInvalidStateTransition
	}

	if nextStatus != "accepted" {
		updated, err := s.offerRepo.UpdateStatusIfCurrent(ctx, offerID, "pending", nextStatus)
		if err != nil {
			return nil, mapStateErr(err)
		}
		return updated, nil
	}

	return s.acceptOffer(ctx, offer)
}

func (s *OfferService) acceptOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txOfferRepo := repository.NewOfferRepository(tx)
	txItemRepo := repository.NewItemRepository(tx)

	locked, err := txOfferRepo.GetByIDForUpdate(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	if locked.Status != "pending" {
		return nil, ErrInvalidStateTransition
	}

	accepted, err := txOfferRepo.UpdateStatusIfCurrent(ctx, offer.ID, "pending", "accepted")
	if err != nil {
		return nil, mapStateErr(err)
	}

	if err := txOfferRepo.DeclinePendingSiblings(ctx, offer.ItemID, offer.ID); err != nil {
		return nil, err
	}

	if _, err := txItemRepo.UpdateStatusIfCurrent(ctx, offer.ItemID, "available", "sold"); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemUnavailable
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return accepted, nil
}

func normalizeOfferStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accept", "accepted":
		return "accepted", nil
	case "decline", "declined":
		return "declined", nil
	case "withdraw", "withdrawn":
		return "withdrawn", nil
	default:
		return "", ErrInvalidStatus
	}
}
