package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"messenger-api/config/common"
	"messenger-api/exception"
	"messenger-api/usecase"
)

func NewFiber(cfg *common.Config, log *logrus.Logger) *fiber.App {
	appName := cfg.GetAppConfig()
	return fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: false,
		AppName:       appName,
		BodyLimit:     usecase.MaxImageSize + 1<<20,
		ErrorHandler:  exception.ErrorHandler(log),
	})
}
