package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

type blockWriter interface {
	Create(ctx context.Context, blockerID, blockedID int64) (*models.Block, error)
	Delete(ctx context.Context, blockerID, blockedID int64) error
}

type BlockHandler struct {
	blocks blockWriter
}

func NewBlockHandler(blocks blockWriter) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

type createBlockRequest struct {
	BlockedID int64 `json:"blocked_id" validate:"required,gt=0"`
}

func (h *BlockHandler) BlockUser(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil || req.BlockedID == actorID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	block, err := h.blocks.Create(c.Context(), actorID, req.BlockedID)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"block": block})
}

func (h *BlockHandler) UnblockUser(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	blockedID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.blocks.Delete(c.Context(), actorID, blockedID); err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
