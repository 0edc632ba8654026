package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/middleware"
	"messenger-api/usecase"
)

type ContactHandler struct {
	usecase.ContactUsecase
	*logrus.Logger
}

func NewContactHandler(contactUsecase usecase.ContactUsecase, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{ContactUsecase: contactUsecase, Logger: logger}
}

func (handler *ContactHandler) AddContact(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.ContactRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	contact, err := handler.ContactUsecase.AddContact(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to add contact")
		return err
	}

	response := res.CommonResponse[res.UserResponse]{
		Message:    "Contact added",
		StatusCode: fiber.StatusCreated,
		Data:       contact,
	}
	return ctx.Status(fiber.StatusCreated).JSON(response)
}

func (handler *ContactHandler) GetContacts(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	contacts, err := handler.ContactUsecase.GetContacts(ctx.UserContext(), principal)
	if err != nil {
		handler.Logger.WithError(err).Errorln("Failed to get contacts")
		return err
	}

	response := res.CommonResponse[[]res.ContactResponse]{
		Message:    "Successfully to get contacts",
		StatusCode: fiber.StatusOK,
		Data:       contacts,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}
