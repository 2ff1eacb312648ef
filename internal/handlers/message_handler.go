package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/services"
)

type messageService interface {
	ListMessages(ctx context.Context, actorID int64, conversationID int64, page int, limit int) ([]models.MessageDetail, int, error)
	SendMessage(ctx context.Context, actorID int64, conversationID int64, input services.SendMessageInput) (*services.MessageDelivery, error)
	EditMessage(ctx context.Context, actorID int64, messageID int64, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, actorID int64, messageID int64) error
}

type MessageHandler struct {
	service messageService
}

func NewMessageHandler(service messageService) *MessageHandler {
	return &MessageHandler{service: service}
}

type sendMessageRequest struct {
	Content     string   `json:"content" validate:"required"`
	MessageType string   `json:"message_type,omitempty" validate:"omitempty,oneof=text image system"`
	ReplyTo     *int64   `json:"reply_to,omitempty" validate:"omitempty,gt=0"`
	Attachments []string `json:"attachments,omitempty" validate:"omitempty,dive,required"`
}

type editMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	messages, total, err := h.service.ListMessages(c.Context(), actorID, conversationID, page, limit)
	if err != nil {
		return mapMessagingError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages":   messages,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	delivery, err := h.service.SendMessage(c.Context(), actorID, conversationID, services.SendMessageInput{
		Content:     req.Content,
		MessageType: req.MessageType,
		ReplyTo:     req.ReplyTo,
		Attachments: req.Attachments,
	})
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": delivery.Message})
}

func (h *MessageHandler) EditMessage(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message id"})
	}

	var req editMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.EditMessage(c.Context(), actorID, messageID, req.Content)
	if err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"message": message})
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message id"})
	}

	if err := h.service.DeleteMessage(c.Context(), actorID, messageID); err != nil {
		return mapMessagingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
