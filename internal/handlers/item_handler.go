package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
	"github.com/huskymarket/HuskyMarketBack/internal/services"
)

const maxListingImageSizeBytes = 5 * 1024 * 1024

type itemApplicationService interface {
	CreateItem(ctx context.Context, sellerID int64, input services.CreateItemInput) (*models.ItemDetail, error)
	GetItem(ctx context.Context, itemID int64) (*models.ItemDetail, error)
	ListItems(ctx context.Context, filter repository.ItemListFilter) ([]models.ItemSummary, int, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]models.ItemSummary, int, error)
	UpdateItem(ctx context.Context, actorID int64, itemID int64, req repository.UpdateItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, actorID int64, itemID int64) error
	UpdateStatus(ctx context.Context, actorID int64, itemID int64, requestedStatus string) (*models.Item, error)
	AddImage(ctx context.Context, actorID int64, itemID int64, upload services.ImageUpload) (*models.ItemImage, error)
	RemoveImage(ctx context.Context, actorID int64, itemID int64, imageID int64) error
}

type relatedItemsProvider interface {
	GetRelatedItems(ctx context.Context, reference *models.Item, limit int) ([]models.ItemWithScore, error)
}

type ItemHandler struct {
	service      itemApplicationService
	relatedItems relatedItemsProvider
}

func NewItemHandler(service itemApplicationService, relatedItems relatedItemsProvider) *ItemHandler {
	return &ItemHandler{
		service:      service,
		relatedItems: relatedItems,
	}
}

type createItemRequest struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Location    string
}

type updateItemRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Condition   *string  `json:"condition"`
	Location    *string  `json:"location"`
}

type updateItemStatusRequest struct {
	Status string `json:"status"`
}

func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	minPrice, err := parseNonNegativeFloat(c.Query("min_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_price must be a valid non-negative number"})
	}
	maxPrice, err := parseNonNegativeFloat(c.Query("max_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_price must be a valid non-negative number"})
	}

	if category := c.Query("category"); category != "" {
		if msg := validateCategory(category); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}
	}
	if condition := c.Query("condition"); condition != "" {
		if msg := validateCondition(condition); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}
	}

	sort := c.Query("sort", "newest")
	switch sort {
	case "newest", "price_asc", "price_desc":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sort must be one of: newest, price_asc, price_desc"})
	}

	status := c.Query("status", "available")
	if status != "available" && status != "sold" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be available or sold"})
	}

	items, total, err := h.service.ListItems(c.Context(), repository.ItemListFilter{
		Query:     strings.TrimSpace(c.Query("q")),
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
		Location:  strings.TrimSpace(c.Query("location")),
		Status:    status,
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Sort:      sort,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}

	return c.JSON(fiber.Map{
		"items":      items,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	detail, err := h.service.GetItem(c.Context(), itemID)
	if err != nil {
		return mapItemError(c, err)
	}

	return c.JSON(fiber.Map{"item": detail})
}

func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	sellerID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must be a valid number"})
	}

	req := createItemRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       price,
		Category:    c.FormValue("category"),
		Condition:   c.FormValue("condition"),
		Location:    c.FormValue("location"),
	}
	if validationErr := validateCreateItemRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	uploads, cleanup, errMsg := collectImageUploads(c)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}
	defer cleanup()

	detail, err := h.service.CreateItem(c.Context(), sellerID, services.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Images:      uploads,
	})
	if err != nil {
		return mapItemError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": detail})
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateUpdateItemRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	item, err := h.service.UpdateItem(c.Context(), actorID, itemID, repository.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
	})
	if err != nil {
		return mapItemError(c, err)
	}

	return c.JSON(fiber.Map{"item": item})
}

func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	if err := h.service.DeleteItem(c.Context(), actorID, itemID); err != nil {
		return mapItemError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ItemHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	var req updateItemStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	item, err := h.service.UpdateStatus(c.Context(), actorID, itemID, req.Status)
	if err != nil {
		return mapItemError(c, err)
	}

	return c.JSON(fiber.Map{"item": item})
}

func (h *ItemHandler) RelatedItems(c *fiber.Ctx) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	detail, err := h.service.GetItem(c.Context(), itemID)
	if err != nil {
		return mapItemError(c, err)
	}

	related, err := h.relatedItems.GetRelatedItems(c.Context(), &detail.Item, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch related items"})
	}

	return c.JSON(fiber.Map{"items": related})
}

func (h *ItemHandler) MyListings(c *fiber.Ctx) error {
	sellerID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	items, total, err := h.service.ListBySeller(c.Context(), sellerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listings"})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

func (h *ItemHandler) AddImage(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}
	if errMsg := checkImageHeader(fileHeader); errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open image file"})
	}
	defer file.Close()

	image, err := h.service.AddImage(c.Context(), actorID, itemID, services.ImageUpload{
		File:     file,
		Filename: fileHeader.Filename,
	})
	if err != nil {
		return mapItemError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": image})
}

func (h *ItemHandler) RemoveImage(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	imageID, err := strconv.ParseInt(c.Params("imageID"), 10, 64)
	if err != nil || imageID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid image id"})
	}

	if err := h.service.RemoveImage(c.Context(), actorID, itemID, imageID); err != nil {
		return mapItemError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseItemID(c *fiber.Ctx) (int64, error) {
	itemID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || itemID <= 0 {
		return 0, errInvalidNumber
	}
	return itemID, nil
}

// collectImageUploads opens every "images" part of the multipart form. The
// returned cleanup closes all opened files and must run even on error paths.
func collectImageUploads(c *fiber.Ctx) ([]services.ImageUpload, func(), string) {
	cleanup := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, cleanup, "multipart form is required"
	}

	headers := form.File["images"]
	if len(headers) > services.MaxImagesPerItem {
		return nil, cleanup, "a listing can have at most 6 images"
	}

	uploads := make([]services.ImageUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	cleanup = func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	for _, header := range headers {
		if errMsg := checkImageHeader(header); errMsg != "" {
			cleanup()
			return nil, func() {}, errMsg
		}
		file, err := header.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, "failed to read image file"
		}
		opened = append(opened, file)
		uploads = append(uploads, services.ImageUpload{
			File:     file,
			Filename: header.Filename,
		})
	}

	return uploads, cleanup, ""
}

func checkImageHeader(header *multipart.FileHeader) string {
	if header.Size <= 0 {
		return "image file is empty"
	}
	if header.Size > maxListingImageSizeBytes {
		return "image file exceeds 5MB limit"
	}
	if !isAllowedImageExtension(filepath.Ext(header.Filename)) {
		return "images must be jpg, jpeg, png, or webp files"
	}
	return ""
}

func mapItemError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	case errors.Is(err, services.ErrItemUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Item is no longer available"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Invalid status change"})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process item request"})
	}
}
