package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/middleware"
	"messenger-api/usecase"
)

type UserHandler struct {
	usecase.UserUsecase
	*logrus.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{UserUsecase: userUsecase, Logger: logger}
}

func (handler *UserHandler) Me(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	userResponse, err := handler.UserUsecase.GetCurrentUser(ctx.UserContext(), principal)
	if err != nil {
		handler.Logger.WithError(err).Errorln("Failed to get current user")
		return err
	}

	response := res.CommonResponse[res.UserResponse]{
		Message:    "Successfully to get user",
		StatusCode: fiber.StatusOK,
		Data:       userResponse,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *UserHandler) UpdateProfile(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.EditProfileRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	userResponse, err := handler.UserUsecase.UpdateProfile(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to update profile")
		return err
	}

	response := res.CommonResponse[res.UserResponse]{
		Message:    "Profile updated",
		StatusCode: fiber.StatusOK,
		Data:       userResponse,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *UserHandler) SendOtp(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.SendOtpRequest)
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	sent, err := handler.UserUsecase.SendOtp(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to send verification code")
		return err
	}

	response := res.CommonResponse[res.LoginResponse]{
		Message:    "Verification code sent",
		StatusCode: fiber.StatusOK,
		Data:       sent,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *UserHandler) UpdateEmail(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	payload := new(req.UpdateEmailRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	userResponse, err := handler.UserUsecase.UpdateEmail(ctx.UserContext(), principal, payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to update email")
		return err
	}

	response := res.CommonResponse[res.UserResponse]{
		Message:    "Email updated",
		StatusCode: fiber.StatusOK,
		Data:       userResponse,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *UserHandler) DeleteAccount(ctx *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	if err := handler.UserUsecase.DeleteAccount(ctx.UserContext(), principal); err != nil {
		handler.Logger.WithError(err).Errorln("Failed to delete account")
		return err
	}

	handler.Logger.Infof("Account %s deleted", principal.UserID)
	return ctx.Status(fiber.StatusOK).JSON(res.CommonResponse[any]{
		Message:    "Account deleted",
		StatusCode: fiber.StatusOK,
	})
}
