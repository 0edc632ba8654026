package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/middleware"
	"messenger-api/usecase"
)

type MessageHandler struct {
	usecase.MessageUsecase
	*logrus.Logger
}

func NewMessageHandler(messageUsecase usecase.MessageUsecase, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{MessageUsecase: messageUsecase, Logger: logger}
}

func (handler *MessageHandler) SendMessage(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.MessageRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	message, err := handler.MessageUsecase.SendMessage(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to send message")
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res.CommonResponse[res.MessageResponse]{
		Message:    "Message sent",
		StatusCode: fiber.StatusCreated,
		Data:       message,
	})
}

// GetMessages lists the conversation with :contactId, oldest first.
func (handler *MessageHandler) GetMessages(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	contactID := ctx.Params("contactId")

	messages, err := handler.MessageUsecase.GetMessages(ctx.UserContext(), principal, contactID)
	if err != nil {
		handler.Logger.WithError(err).Error("Failed to get messages")
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(res.CommonResponse[[]res.MessageResponse]{
		Message:    "Successfully to get messages",
		StatusCode: fiber.StatusOK,
		Data:       messages,
	})
}

func (handler *MessageHandler) MarkAsRead(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.MessageReadRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	read, err := handler.MessageUsecase.MarkMessagesAsRead(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to mark messages as read")
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(res.CommonResponse[res.MessageReadResponse]{
		Message:    "Messages marked as read",
		StatusCode: fiber.StatusOK,
		Data:       read,
	})
}

func (handler *MessageHandler) React(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.ReactionRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	message, err := handler.MessageUsecase.React(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to react to message")
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(res.CommonResponse[res.MessageResponse]{
		Message:    "Reaction saved",
		StatusCode: fiber.StatusOK,
		Data:       message,
	})
}

func (handler *MessageHandler) EditMessage(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.EditMessageRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	message, err := handler.MessageUsecase.EditMessage(ctx.UserContext(), principal, ctx.Params("messageId"), payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to edit message")
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(res.CommonResponse[res.MessageResponse]{
		Message:    "Message updated",
		StatusCode: fiber.StatusOK,
		Data:       message,
	})
}

func (handler *MessageHandler) DeleteMessage(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	if err := handler.MessageUsecase.DeleteMessage(ctx.UserContext(), principal, ctx.Params("messageId")); err != nil {
		handler.Logger.WithError(err).Warn("Failed to delete message")
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(res.CommonResponse[any]{
		Message:    "Message deleted",
		StatusCode: fiber.StatusOK,
	})
}

func (handler *MessageHandler) UploadImage(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	uploaded, err := handler.MessageUsecase.UploadImage(ctx.UserContext(), principal,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to upload image")
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res.CommonResponse[res.UploadResponse]{
		Message:    "Image uploaded",
		StatusCode: fiber.StatusCreated,
		Data:       uploaded,
	})
}
