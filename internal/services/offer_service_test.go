package services

import (
	"context"
	"errors"
	"testing"

	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
)

type stubOfferRepo struct {
	createResult *models.Offer
	createErr    error
	getResult    *models.Offer
	getErr       error
	itemOffers   []models.Offer
	buyerOffers  []models.Offer
	hasPending   bool
	pendingErr   error
	updateResult *models.Offer
	updateErr    error
	lastCreate   repository.CreateOfferInput
	lastCurrent  string
	lastNext     string
}

func (r *stubOfferRepo) Create(_ context.Context, input repository.CreateOfferInput) (*models.Offer, error) {
	r.lastCreate = input
	return r.createResult, r.createErr
}

func (r *stubOfferRepo) GetByID(_ context.Context, _ int64) (*models.Offer, error) {
	return r.getResult, r.getErr
}

func (r *stubOfferRepo) ListByItemID(_ context.Context, _ int64) ([]models.Offer, error) {
	return r.itemOffers, nil
}

func (r *stubOfferRepo) ListByBuyerID(_ context.Context, _ int64) ([]models.Offer, error) {
	return r.buyerOffers, nil
}

func (r *stubOfferRepo) HasPendingOffer(_ context.Context, _ int64, _ int64) (bool, error) {
	return r.hasPending, r.pendingErr
}

func (r *stubOfferRepo) UpdateStatusIfCurrent(_ context.Context, _ int64, currentStatus, nextStatus string) (*models.Offer, error) {
	r.lastCurrent = currentStatus
	r.lastNext = nextStatus
	return r.updateResult, r.updateErr
}

type stubOfferItemReader struct {
	item *models.Item
	err  error
}

func (r *stubOfferItemReader) GetByID(_ context.Context, _ int64) (*models.Item, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.item, nil
}

func offerServiceWith(offerRepo offerStore, itemRepo itemReader) *OfferService {
	return &OfferService{offerRepo: offerRepo, itemRepo: itemRepo}
}

func TestPlaceOfferRejectsOwnListing(t *testing.T) {
	items := &stubOfferItemReader{item: availableItem(10, 42)}
	service := offerServiceWith(&stubOfferRepo{}, items)

	_, err := service.PlaceOffer(context.Background(), 42, PlaceOfferInput{ItemID: 10, Amount: 20})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for own listing, got %v", err)
	}
}

func TestPlaceOfferRejectsSoldListing(t *testing.T) {
	sold := availableItem(10, 8)
	sold.Status = "sold"
	service := offerServiceWith(&stubOfferRepo{}, &stubOfferItemReader{item: sold})

	_, err := service.PlaceOffer(context.Background(), 42, PlaceOfferInput{ItemID: 10, Amount: 20})
	if !errors.Is(err, ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}
}

func TestPlaceOfferRejectsDuplicatePending(t *testing.T) {
	repo := &stubOfferRepo{hasPending: true}
	service := offerServiceWith(repo, &stubOfferItemReader{item: availableItem(10, 8)})

	_, err := service.PlaceOffer(context.Background(), 42, PlaceOfferInput{ItemID: 10, Amount: 20})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPlaceOfferTrimsNote(t *testing.T) {
	note := "  can pick up tonight  "
	repo := &stubOfferRepo{
		createResult: &models.Offer{ID: 1, ItemID: 10, BuyerID: 42, Amount: 20, Status: "pending"},
	}
	service := offerServiceWith(repo, &stubOfferItemReader{item: availableItem(10, 8)})

	_, err := service.PlaceOffer(context.Background(), 42, PlaceOfferInput{ItemID: 10, Amount: 20, Note: &note})
	if err != nil {
		t.Fatalf("PlaceOffer: %v", err)
	}
	if repo.lastCreate.Note == nil || *repo.lastCreate.Note != "can pick up tonight" {
		t.Fatalf("expected trimmed note, got %+v", repo.lastCreate.Note)
	}
}

func TestListForItemRequiresSeller(t *testing.T) {
	service := offerServiceWith(&stubOfferRepo{}, &stubOfferItemReader{item: availableItem(10, 8)})

	_, err := service.ListForItem(context.Background(), 42, 10)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateStatusWithdrawRequiresBuyer(t *testing.T) {
	repo := &stubOfferRepo{
		getResult: &models.Offer{ID: 5, ItemID: 10, BuyerID: 42, Status: "pending"},
	}
	service := offerServiceWith(repo, &stubOfferItemReader{item: availableItem(10, 8)})

	_, err := service.UpdateStatus(context.Background(), 8, 5, "withdrawn")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for seller withdrawing, got %v", err)
	}
}

func TestUpdateStatusDeclineRequiresSeller(t *testing.T) {
	repo := &stubOfferRepo{
		getResult: &models.Offer{ID: 5, ItemID: 10, BuyerID: 42, Status: "pending"},
	}
	service := offerServiceWith(repo, &stubOfferItemReader{item: availableItem(10, 8)})

	_, err := service.UpdateStatus(context.Background(), 42, 5, "declined")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for buyer declining, got %v", err)
	}
}

func TestUpdateStatusDeclineMovesFromPending(t *testing.T) {
	repo := &stubOfferRepo{
		getResult:    &models.Offer{ID: 5, ItemID: 10, BuyerID: 42, Status: "pending"},
		updateResult: &models.Offer{ID: 5, ItemID: 10, BuyerID: 42, Status: "declined"},
	}
	service := offerServiceWith(repo, &stubOfferItemReader{item: availableItem(10, 8)})

	offer, err := service.UpdateStatus(context.Background(), 8, 5, "decline")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if offer.Status != "declined" {
		t.Fatalf("expected declined, got %q", offer.Status)
	}
	if repo.lastCurrent != "pending" || repo.lastNext != "declined" {
		t.Fatalf("unexpected transition: %q -> %q", repo.lastCurrent, repo.lastNext)
	}
}

func TestUpdateStatusRejectsSettledOffer(t *testing.T) {
	repo := &stubOfferRepo{
		getResult: &models.Offer{ID: 5, ItemID: 10, BuyerID: 42, Status: "declined"},
	}
	service := offerServiceWith(repo, &stubOfferItemReader{item: availableItem(10, 8)})

	_, err := service.UpdateStatus(context.Background(), 42, 5, "withdrawn")
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	service := offerServiceWith(&stubOfferRepo{}, &stubOfferItemReader{})

	_, err := service.UpdateStatus(context.Background(), 8, 5, "paused")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
