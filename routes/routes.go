package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"messenger-api/handler"
	"messenger-api/middleware"
)

type ConfigRoute struct {
	*fiber.App
	*middleware.Middleware
	*handler.AuthHandler
	*handler.UserHandler
	*handler.ContactHandler
	*handler.MessageHandler
	*handler.HealthHandler
}

func (rc *ConfigRoute) GetRoute() {
	rc.GetPublicRoute()
	rc.GetProtectedRoute()
}

func (rc *ConfigRoute) GetPublicRoute() {
	rc.App.Get("/healthz", rc.HealthHandler.Health)
	rc.App.Get("/metrics", middleware.MetricsHandler())

	app := rc.App.Group("/api/auth")
	app.Post("/login", rc.AuthHandler.Login)
	app.Post("/verify", rc.AuthHandler.Verify)
	app.Post("/oauth", rc.Middleware.OAuthClientSecret, rc.AuthHandler.OAuth)
}

func (rc *ConfigRoute) GetProtectedRoute() {
	app := rc.App.Group("/api/user", rc.Middleware.JWTProtected, rc.Middleware.ExtractUserID)

	app.Get("/me", rc.UserHandler.Me)
	app.Put("/profile", rc.UserHandler.UpdateProfile)
	app.Post("/send-otp", rc.UserHandler.SendOtp)
	app.Put("/email", rc.UserHandler.UpdateEmail)
	app.Delete("/", rc.UserHandler.DeleteAccount)

	app.Get("/contacts", rc.ContactHandler.GetContacts)
	app.Post("/contact", rc.ContactHandler.AddContact)

	app.Get("/messages/:contactId", rc.MessageHandler.GetMessages)
	app.Post("/message", rc.MessageHandler.SendMessage)
	app.Post("/message-read", rc.MessageHandler.MarkAsRead)
	app.Post("/reaction", rc.MessageHandler.React)
	app.Put("/message/:messageId", rc.MessageHandler.EditMessage)
	app.Delete("/message/:messageId", rc.MessageHandler.DeleteMessage)
	app.Post("/upload", rc.MessageHandler.UploadImage)
}

func (rc *ConfigRoute) GetWebSocketRoute(wsHandler *handler.WebSocketHandler) {
	rc.App.Use("/ws", wsHandler.Authorize)
	rc.App.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
