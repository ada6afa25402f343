package handlers

import (
	"errors"

	"teenskill-api/internal/core/services"
	"teenskill-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles per-task chat endpoints
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageRequest represents send message request body
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Send handles appending a message to a task's log
// @Summary Send message
// @Description Append a message to a task's chat log (participants only)
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param body body SendMessageRequest true "Message content"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id}/messages [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	message, err := h.chatService.Send(c.Context(), userID, taskID, &services.SendMessageInput{
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			return response.BadRequest(c, "Message content is required")
		case errors.Is(err, services.ErrReservedPrefix):
			return response.BadRequest(c, "Message uses a reserved prefix")
		case errors.Is(err, services.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrNotTaskParticipant):
			return response.Forbidden(c, "Only task participants can send messages")
		default:
			return response.InternalServerError(c, "Failed to send message")
		}
	}

	return response.Created(c, "Message sent successfully", fiber.Map{
		"message": message,
	})
}

// History handles reading a task's message log
// @Summary Get messages
// @Description Get a task's chat log, oldest first (participants only)
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id}/messages [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid task ID")
	}

	messages, err := h.chatService.History(c.Context(), userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, services.ErrNotTaskParticipant):
			return response.Forbidden(c, "Only task participants can read messages")
		default:
			return response.InternalServerError(c, "Failed to get messages")
		}
	}

	return response.Success(c, "Messages retrieved successfully", fiber.Map{
		"messages": messages,
	})
}
