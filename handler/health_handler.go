package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"messenger-api/dto/res"
)

type HealthHandler struct {
	*gorm.DB
	Redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, client *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, Redis: client}
}

func (handler *HealthHandler) Health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "redis": "ok"}
	code := fiber.StatusOK

	if conn, err := handler.DB.DB(); err != nil || conn.PingContext(checkCtx) != nil {
		status["database"] = "down"
		code = fiber.StatusServiceUnavailable
	}
	if handler.Redis != nil {
		if err := handler.Redis.Ping(checkCtx).Err(); err != nil {
			status["redis"] = "down"
			code = fiber.StatusServiceUnavailable
		}
	}

	message := "ok"
	if code != fiber.StatusOK {
		message = "degraded"
	}
	return ctx.Status(code).JSON(res.CommonResponse[map[string]string]{
		Message:    message,
		StatusCode: code,
		Data:       status,
	})
}
