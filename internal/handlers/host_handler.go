package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

type hostInboxService interface {
	BulkConversationActions(ctx context.Context, actorID, hostID int64, conversationIDs []int64, action string) (*models.BulkActionResult, error)
	HostConversationsByVehicle(ctx context.Context, actorID, hostID int64) ([]models.VehicleConversations, error)
	HostConversationAnalytics(ctx context.Context, actorID, hostID int64) (*models.HostConversationAnalytics, error)
}

type HostHandler struct {
	service hostInboxService
}

func NewHostHandler(service hostInboxService) *HostHandler {
	return &HostHandler{service: service}
}

type bulkConversationActionsRequest struct {
	HostID          int64   `json:"host_id" validate:"required,gt=0"`
	ConversationIDs []int64 `json:"conversation_ids" validate:"required,min=1,dive,gt=0"`
	Action          string  `json:"action" validate:"required,oneof=archive unarchive mark_read delete"`
}

func (h *HostHandler) BulkConversationActions(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req bulkConversationActionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.BulkConversationActions(c.Context(), actorID, req.HostID, req.ConversationIDs, req.Action)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"result": result})
}

func (h *HostHandler) ConversationsByVehicle(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	grouped, err := h.service.HostConversationsByVehicle(c.Context(), actorID, actorID)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"vehicles": grouped})
}

func (h *HostHandler) ConversationAnalytics(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	analytics, err := h.service.HostConversationAnalytics(c.Context(), actorID, actorID)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"analytics": analytics})
}
