package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/services"
)

type conversationService interface {
	ListConversations(ctx context.Context, actorID int64, role string) ([]models.ConversationSummary, error)
	GetConversation(ctx context.Context, actorID int64, conversationID int64) (*models.ConversationSummary, error)
	FindRentalConversation(ctx context.Context, actorID, vehicleID, renterID, ownerID int64) (*models.Conversation, error)
	CreateRentalConversation(ctx context.Context, actorID, vehicleID, renterID, ownerID int64) (*models.Conversation, error)
	CreateMotorsportsConversation(ctx context.Context, actorID int64, input services.MotorsportsConversationInput) (*models.Conversation, error)
	MarkConversationRead(ctx context.Context, actorID int64, conversationID int64) error
	ArchiveConversation(ctx context.Context, actorID int64, conversationID int64) error
	DeleteConversation(ctx context.Context, actorID int64, conversationID int64) error
	LinkReservation(ctx context.Context, actorID int64, conversationID int64, reservationID int64) error
}

type ConversationHandler struct {
	service conversationService
}

func NewConversationHandler(service conversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

type createConversationRequest struct {
	VehicleID int64 `json:"vehicle_id" validate:"required,gt=0"`
	RenterID  int64 `json:"renter_id" validate:"required,gt=0"`
	OwnerID   int64 `json:"owner_id" validate:"required,gt=0"`
}

type createMotorsportsConversationRequest struct {
	ParticipantID    int64  `json:"participant_id" validate:"required,gt=0"`
	ConversationType string `json:"conversation_type" validate:"required,oneof=team driver"`
	TeamID           *int64 `json:"team_id,omitempty" validate:"omitempty,gt=0"`
	DriverProfileID  *int64 `json:"driver_profile_id,omitempty" validate:"omitempty,gt=0"`
}

type linkReservationRequest struct {
	ReservationID int64 `json:"reservation_id" validate:"required,gt=0"`
}

// ListConversations serves the caller's inbox for one role. A user_id query
// argument, when present, must match the verified identity.
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if declared := c.Query("user_id"); declared != "" {
		declaredID, err := strconv.ParseInt(declared, 10, 64)
		if err != nil || declaredID != actorID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
	}

	role := c.Query("role", "renter")
	conversations, err := h.service.ListConversations(c.Context(), actorID, role)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	conversation, err := h.service.GetConversation(c.Context(), actorID, conversationID)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": conversation})
}

// FindConversation is the idempotent triad lookup used before opening a
// duplicate thread.
func (h *ConversationHandler) FindConversation(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	vehicleID, err1 := strconv.ParseInt(c.Query("vehicle_id"), 10, 64)
	renterID, err2 := strconv.ParseInt(c.Query("renter_id"), 10, 64)
	ownerID, err3 := strconv.ParseInt(c.Query("owner_id"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query parameters"})
	}

	conversation, err := h.service.FindRentalConversation(c.Context(), actorID, vehicleID, renterID, ownerID)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": conversation})
}

func (h *ConversationHandler) CreateConversation(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	conversation, err := h.service.CreateRentalConversation(
		c.Context(), actorID, req.VehicleID, req.RenterID, req.OwnerID,
	)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": conversation})
}

func (h *ConversationHandler) CreateMotorsportsConversation(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createMotorsportsConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	conversation, err := h.service.CreateMotorsportsConversation(c.Context(), actorID, services.MotorsportsConversationInput{
		ParticipantID:    req.ParticipantID,
		ConversationType: req.ConversationType,
		TeamID:           req.TeamID,
		DriverProfileID:  req.DriverProfileID,
	})
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": conversation})
}

func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	if err := h.service.MarkConversationRead(c.Context(), actorID, conversationID); err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *ConversationHandler) Archive(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	if err := h.service.ArchiveConversation(c.Context(), actorID, conversationID); err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *ConversationHandler) DeleteConversation(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	if err := h.service.DeleteConversation(c.Context(), actorID, conversationID); err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *ConversationHandler) LinkReservation(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	var req linkReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.LinkReservation(c.Context(), actorID, conversationID, req.ReservationID); err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
