package api

import (
	"contactdash/middleware"
	"contactdash/models"
	"contactdash/storage"
	"contactdash/utils"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler serves the message mutation endpoints
type MessageHandler struct {
	store          storage.MessageStore
	events         *NotificationHandler
	validateCreate bool
}

// NewMessageHandler creates a new message handler. events may be nil.
func NewMessageHandler(store storage.MessageStore, events *NotificationHandler, validateCreate bool) *MessageHandler {
	return &MessageHandler{
		store:          store,
		events:         events,
		validateCreate: validateCreate,
	}
}

type idRequest struct {
	ID string `json:"id"`
}

// Create stores a new contact-form submission
func (h *MessageHandler) Create(c *fiber.Ctx) error {
	var req models.NewMessage
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError(utils.T(middleware.Localizer(c), "error_invalid_request"), err)
	}

	if h.validateCreate {
		if err := req.Validate(); err != nil {
			return utils.BadRequestError(err.Error(), err)
		}
	}

	msg, err := h.store.Create(c.UserContext(), req)
	if err != nil {
		return h.internal(c, "create message", err)
	}

	utils.Log.WithField("id", msg.ID).Info("Message created from %s", msg.Email)
	if h.events != nil {
		h.events.Created(msg.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

// All returns every stored message
func (h *MessageHandler) All(c *fiber.Ctx) error {
	messages, err := h.store.List(c.UserContext())
	if err != nil {
		return h.internal(c, "list messages", err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// Delete removes a message permanently (DELETE /delete)
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	id, err := h.parseID(c)
	if err != nil {
		return err
	}

	if err := h.store.Delete(c.UserContext(), id); err != nil {
		return h.storeError(c, "delete message", id, err)
	}

	utils.Log.WithField("id", id).Info("Message permanently deleted")
	if h.events != nil {
		h.events.Deleted(id)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// SetFlag returns a handler that sets flag to value on the message named in
// the request body. Every PATCH endpoint is one of these.
func (h *MessageHandler) SetFlag(flag models.Flag, value bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := h.parseID(c)
		if err != nil {
			return err
		}

		if err := h.store.Patch(c.UserContext(), id, flag, value); err != nil {
			return h.storeError(c, "update message", id, err)
		}

		utils.Log.WithFields(map[string]interface{}{"id": id, "flag": flag}).Debug("Message flag set to %v", value)
		if h.events != nil {
			h.events.Updated(id, flag, value)
		}

		return c.JSON(fiber.Map{
			"success": true,
		})
	}
}

func (h *MessageHandler) parseID(c *fiber.Ctx) (string, error) {
	var req idRequest
	if err := c.BodyParser(&req); err != nil {
		return "", utils.BadRequestError(utils.T(middleware.Localizer(c), "error_invalid_request"), err)
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return "", utils.BadRequestError(utils.T(middleware.Localizer(c), "error_missing_id"), nil)
	}
	return id, nil
}

func (h *MessageHandler) storeError(c *fiber.Ctx, op, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NotFoundError(utils.T(middleware.Localizer(c), "error_not_found"), err).WithContext("id", id)
	}
	return h.internal(c, op, err).WithContext("id", id)
}

// internal hides the cause from the caller; the error handler logs it
func (h *MessageHandler) internal(c *fiber.Ctx, op string, err error) *utils.AppError {
	return utils.InternalServerError(utils.T(middleware.Localizer(c), "error_500"), err).WithContext("op", op)
}

