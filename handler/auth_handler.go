package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/usecase"
)

type AuthHandler struct {
	usecase.AuthUsecase
	*logrus.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUsecase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{AuthUsecase: authUseCase, Logger: logger}
}

func (handler *AuthHandler) Login(ctx *fiber.Ctx) error {
	// parse request
	payload := new(req.LoginRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	// get from useCase
	loginResponse, err := handler.AuthUsecase.Login(ctx.UserContext(), payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to start login")
		return err
	}
	// response
	response := res.CommonResponse[res.LoginResponse]{
		Message:    "Verification code sent",
		StatusCode: fiber.StatusOK,
		Data:       loginResponse,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *AuthHandler) Verify(ctx *fiber.Ctx) error {
	payload := new(req.VerifyRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	authResponse, err := handler.AuthUsecase.Verify(ctx.UserContext(), payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to verify code")
		return err
	}

	response := res.CommonResponse[res.AuthResponse]{
		Message:    "Successfully signed in",
		StatusCode: fiber.StatusOK,
		Data:       authResponse,
	}
	handler.Logger.Infof("User %s signed in with code", authResponse.User.ID)
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *AuthHandler) OAuth(ctx *fiber.Ctx) error {
	payload := new(req.OAuthRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	authResponse, err := handler.AuthUsecase.OAuthSession(ctx.UserContext(), payload)
	if err != nil {
		handler.Logger.WithError(err).Warn("Failed to open OAuth session")
		return err
	}

	response := res.CommonResponse[res.AuthResponse]{
		Message:    "Successfully signed in",
		StatusCode: fiber.StatusOK,
		Data:       authResponse,
	}
	handler.Logger.Infof("User %s signed in with OAuth", authResponse.User.ID)
	return ctx.Status(fiber.StatusOK).JSON(response)
}
