package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrItemNotFound           = errors.New("item not found")
	ErrItemUnavailable        = errors.New("item unavailable")
	ErrStorageUnavailable     = errors.New("storage service is not configured")
)

const (
	MaxImagesPerItem = 6

	// MaxSellerListings caps the unpaginated "my listings" view.
	MaxSellerListings = 100
)

type itemStore interface {
	Create(ctx context.Context, input repository.CreateItemInput) (*models.Item, error)
	GetByID(ctx context.Context, itemID int64) (*models.Item, error)
	List(ctx context.Context, filter repository.ItemListFilter) ([]models.ItemSummary, int, error)
	UpdatePartial(ctx context.Context, itemID int64, req repository.UpdateItemInput) (*models.Item, error)
	UpdateStatusIfCurrent(ctx context.Context, itemID int64, currentStatus, nextStatus string) (*models.Item, error)
	Delete(ctx context.Context, itemID int64) error
}

type itemImageStore interface {
	Insert(ctx context.Context, itemID int64, url string, position int) (*models.ItemImage, error)
	ListByItemID(ctx context.Context, itemID int64) ([]models.ItemImage, error)
	GetByID(ctx context.Context, imageID int64) (*models.ItemImage, error)
	Delete(ctx context.Context, imageID int64) error
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ItemService struct {
	itemRepo       itemStore
	imageRepo      itemImageStore
	userRepo       userReader
	storageService StorageService
}

func NewItemService(
	itemRepo *repository.ItemRepository,
	imageRepo *repository.ItemImageRepository,
	userRepo userReader,
	storageService StorageService,
) *ItemService {
	return &ItemService{
		itemRepo:       itemRepo,
		imageRepo:      imageRepo,
		userRepo:       userRepo,
		storageService: storageService,
	}
}

func newItemServiceWith(
	itemRepo itemStore,
	imageRepo itemImageStore,
	userRepo userReader,
	storageService StorageService,
) *ItemService {
	return &ItemService{
		itemRepo:       itemRepo,
		imageRepo:      imageRepo,
		userRepo:       userRepo,
		storageService: storageService,
	}
}

type ImageUpload struct {
	File     multipart.File
	Filename string
}

type CreateItemInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Location    string
	Images      []ImageUpload
}

// CreateItem inserts the listing, then uploads its images and attaches them.
// If any upload or attach step fails, the already-uploaded objects and the
// listing row are removed before the error is returned.
func (s *ItemService) CreateItem(
	ctx context.Context,
	sellerID int64,
	input CreateItemInput,
) (*models.ItemDetail, error) {
	if sellerID <= 0 || input.Price <= 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if len(input.Images) > MaxImagesPerItem {
		return nil, ErrInvalidInput
	}
	if len(input.Images) > 0 && s.storageService == nil {
		return nil, ErrStorageUnavailable
	}

	item, err := s.itemRepo.Create(ctx, repository.CreateItemInput{
		SellerID:    sellerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    input.Category,
		Condition:   input.Condition,
		Location:    strings.TrimSpace(input.Location),
	})
	if err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("items/%d", item.ID)
	images := make([]models.ItemImage, 0, len(input.Images))
	uploadedURLs := make([]string, 0, len(input.Images))

	for position, upload := range input.Images {
		filename := uuid.NewString() + strings.ToLower(filepath.Ext(upload.Filename))
		imageURL, err := s.storageService.UploadFile(ctx, upload.File, filename, folder)
		if err != nil {
			s.compensateCreate(ctx, item.ID, uploadedURLs)
			return nil, fmt.Errorf("upload listing image: %w", err)
		}
		uploadedURLs = append(uploadedURLs, imageURL)

		image, err := s.imageRepo.Insert(ctx, item.ID, imageURL, position)
		if err != nil {
			s.compensateCreate(ctx, item.ID, uploadedURLs)
			return nil, fmt.Errorf("attach listing image: %w", err)
		}
		images = append(images, *image)
	}

	seller, err := s.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	return &models.ItemDetail{
		Item:   *item,
		Images: images,
		Seller: seller.PublicSeller(),
	}, nil
}

// compensateCreate undoes a partially created listing: storage objects are
// removed best-effort, the item row delete cascades any attached image rows.
func (s *ItemService) compensateCreate(ctx context.Context, itemID int64, uploadedURLs []string) {
	for _, fileURL := range uploadedURLs {
		_ = s.storageService.DeleteFile(ctx, fileURL)
	}
	_ = s.itemRepo.Delete(ctx, itemID)
}

func (s *ItemService) GetItem(ctx context.Context, itemID int64) (*models.ItemDetail, error) {
	if itemID <= 0 {
		return nil, ErrInvalidInput
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, mapItemLookupErr(err)
	}

	images, err := s.imageRepo.ListByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	seller, err := s.userRepo.GetByID(ctx, item.SellerID)
	if err != nil {
		return nil, err
	}

	return &models.ItemDetail{
		Item:   *item,
		Images: images,
		Seller: seller.PublicSeller(),
	}, nil
}

func (s *ItemService) ListItems(
	ctx context.Context,
	filter repository.ItemListFilter,
) ([]models.ItemSummary, int, error) {
	if filter.Limit <= 0 || filter.Offset < 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.itemRepo.List(ctx, filter)
}

func (s *ItemService) ListBySeller(ctx context.Context, sellerID int64) ([]models.ItemSummary, int, error) {
	return s.itemRepo.List(ctx, repository.ItemListFilter{
		SellerID: sellerID,
		Sort:     "newest",
		Limit:    MaxSellerListings,
	})
}

func (s *ItemService) UpdateItem(
	ctx context.Context,
	actorID int64,
	itemID int64,
	req repository.UpdateItemInput,
) (*models.Item, error) {
	if _, err := s.ownedItem(ctx, actorID, itemID); err != nil {
		return nil, err
	}
	if req.Price != nil && *req.Price <= 0 {
		return nil, ErrInvalidInput
	}
	return s.itemRepo.UpdatePartial(ctx, itemID, req)
}

// DeleteItem removes the listing's storage objects first, then the row.
// Object deletes are best-effort; an orphaned object is preferable to a
// listing that still points at deleted images.
func (s *ItemService) DeleteItem(ctx context.Context, actorID int64, itemID int64) error {
	if _, err := s.ownedItem(ctx, actorID, itemID); err != nil {
		return err
	}

	images, err := s.imageRepo.ListByItemID(ctx, itemID)
	if err != nil {
		return err
	}
	if s.storageService != nil {
		for _, image := range images {
			_ = s.storageService.DeleteFile(ctx, image.URL)
		}
	}

	return s.itemRepo.Delete(ctx, itemID)
}

func (s *ItemService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	itemID int64,
	requestedStatus string,
) (*models.Item, error) {
	item, err := s.ownedItem(ctx, actorID, itemID)
	if err != nil {
		return nil, err
	}

	nextStatus, err := normalizeItemStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if nextStatus == item.Status {
		return item, nil
	}

	updated, err := s.itemRepo.UpdateStatusIfCurrent(ctx, itemID, item.Status, nextStatus)
	if err != nil {
		return nil, mapStateErr(err)
	}
	return updated, nil
}

func (s *ItemService) AddImage(
	ctx context.Context,
	actorID int64,
	itemID int64,
	upload ImageUpload,
) (*models.ItemImage, error) {
	if s.storageService == nil {
		return nil, ErrStorageUnavailable
	}
	if _, err := s.ownedItem(ctx, actorID, itemID); err != nil {
		return nil, err
	}

	images, err := s.imageRepo.ListByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(images) >= MaxImagesPerItem {
		return nil, ErrInvalidInput
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(upload.Filename))
	imageURL, err := s.storageService.UploadFile(ctx, upload.File, filename, fmt.Sprintf("items/%d", itemID))
	if err != nil {
		return nil, fmt.Errorf("upload listing image: %w", err)
	}

	image, err := s.imageRepo.Insert(ctx, itemID, imageURL, len(images))
	if err != nil {
		_ = s.storageService.DeleteFile(ctx, imageURL)
		return nil, err
	}
	return image, nil
}

func (s *ItemService) RemoveImage(ctx context.Context, actorID int64, itemID int64, imageID int64) error {
	if _, err := s.ownedItem(ctx, actorID, itemID); err != nil {
		return err
	}

	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return mapItemLookupErr(err)
	}
	if image.ItemID != itemID {
		return ErrInvalidInput
	}

	if s.storageService != nil {
		_ = s.storageService.DeleteFile(ctx, image.URL)
	}
	return s.imageRepo.Delete(ctx, imageID)
}

func (s *ItemService) ownedItem(ctx context.Context, actorID int64, itemID int64) (*models.Item, error) {
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
	return item, nil
}

func mapItemLookupErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	return err
}

func mapStateErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidStateTransition
	}
	return err
}

func normalizeItemStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "available", "relist", "relisted":
		return "available", nil
	case "sold":
		return "sold", nil
	default:
		return "", ErrInvalidStatus
	}
}
