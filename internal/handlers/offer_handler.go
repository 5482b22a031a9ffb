package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/huskymarket/HuskyMarketBack/internal/models"
	"github.com/huskymarket/HuskyMarketBack/internal/services"
	"github.com/jackc/pgx/v5"
)

type offerApplicationService interface {
	PlaceOffer(ctx context.Context, buyerID int64, input services.PlaceOfferInput) (*models.Offer, error)
	ListForItem(ctx context.Context, actorID int64, itemID int64) ([]models.Offer, error)
	ListMine(ctx context.Context, buyerID int64) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, actorID int64, offerID int64, requestedStatus string) (*models.Offer, error)
}

type OfferHandler struct {
	offerService offerApplicationService
}

func NewOfferHandler(offerService offerApplicationService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

type placeOfferRequest struct {
	Amount float64 `json:"amount"`
	Note   *string `json:"note"`
}

type updateOfferStatusRequest struct {
	Status string `json:"status"`
}

func (h *OfferHandler) PlaceOffer(c *fiber.Ctx) error {
	buyerID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	var req placeOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	offer, err := h.offerService.PlaceOffer(c.Context(), buyerID, services.PlaceOfferInput{
		ItemID: itemID,
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		return mapOfferError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"offer": offer})
}

func (h *OfferHandler) ListForItem(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	itemID, err := parseItemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	offers, err := h.offerService.ListForItem(c.Context(), actorID, itemID)
	if err != nil {
		return mapOfferError(c, err)
	}

	return c.JSON(fiber.Map{"offers": offers})
}

func (h *OfferHandler) ListMine(c *fiber.Ctx) error {
	buyerID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	offers, err := h.offerService.ListMine(c.Context(), buyerID)
	if err != nil {
		return mapOfferError(c, err)
	}

	return c.JSON(fiber.Map{"offers": offers})
}

func (h *OfferHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	offerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || offerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer id"})
	}

	var req updateOfferStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	offer, err := h.offerService.UpdateStatus(c.Context(), actorID, offerID, req.Status)
	if err != nil {
		return mapOfferError(c, err)
	}

	return c.JSON(fiber.Map{"offer": offer})
}

func mapOfferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Offer not found"})
	case errors.Is(err, services.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A pending offer already exists for this item"})
	case errors.Is(err, services.ErrItemUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Item is no longer available"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Offer is no longer pending"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process offer request"})
	}
}
