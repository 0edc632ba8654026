package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"messenger-api/config/logger"
	"messenger-api/dto"
	"messenger-api/dto/req"
	"messenger-api/enum"
	"messenger-api/exception"
	"messenger-api/middleware"
	"messenger-api/repository"
	"messenger-api/security"
)

const broadcastBuffer = 256

type outbound struct {
	UserID string
	Event  dto.Event
}

// WebSocketHandler is the realtime hub: one live connection per user, fed
// by a single writer goroutine.
type WebSocketHandler struct {
	*gorm.DB
	*repository.ContactRepository
	*security.JWT
	Users *repository.UserRepository
	Log   *logger.AppLogger
	sync.RWMutex
	Clients   map[string]*websocket.Conn // userId -> connection
	Broadcast chan outbound
	done      chan struct{}
	closeOnce sync.Once
}

func NewWebSocketHandler(db *gorm.DB, log *logger.AppLogger, contactRepository *repository.ContactRepository, userRepository *repository.UserRepository, jwtService *security.JWT) *WebSocketHandler {
	handler := &WebSocketHandler{
		DB:                db,
		ContactRepository: contactRepository,
		Users:             userRepository,
		JWT:               jwtService,
		Log:               log,
		Clients:           make(map[string]*websocket.Conn),
		Broadcast:         make(chan outbound, broadcastBuffer),
		done:              make(chan struct{}),
	}
	go handler.runBroadcast()
	return handler
}

// Notify queues an event for userID. It never blocks: when the queue is
// full the event is dropped.
func (handler *WebSocketHandler) Notify(userID string, event dto.Event) {
	select {
	case handler.Broadcast <- outbound{UserID: userID, Event: event}:
	default:
		middleware.WSEventsDropped.Inc()
		handler.Log.WS.Warning.Warn().Str("userId", userID).Str("type", string(event.Type)).Msg("Broadcast queue full, event dropped")
	}
}

func (handler *WebSocketHandler) IsOnline(userID string) bool {
	handler.RLock()
	defer handler.RUnlock()
	_, ok := handler.Clients[userID]
	return ok
}

// Authorize is mounted in front of the upgrade; browsers cannot set headers
// on a websocket handshake so the token comes in the query string.
func (handler *WebSocketHandler) Authorize(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return exception.Unauthorized("Missing token")
	}
	principal, err := handler.JWT.PrincipalFromToken(token)
	if err != nil {
		handler.Log.WS.Warning.Warn().Err(err).Msg("Rejected websocket token")
		return exception.Unauthorized("Token is not valid")
	}
	exists, err := handler.Users.ExistsById(c.UserContext(), handler.DB, principal.UserID)
	if err != nil {
		return err
	}
	if !exists {
		handler.Log.WS.Warning.Warn().Str("userId", principal.UserID).Msg("Websocket token for unknown user")
		return exception.Unauthorized("User no longer exists")
	}
	c.Locals("principal", principal)
	return c.Next()
}

func (handler *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	principal, ok := c.Locals("principal").(security.Principal)
	if !ok {
		_ = c.Close()
		return
	}
	userID := principal.UserID

	handler.registerClient(userID, c)
	defer func() {
		if handler.removeClient(userID, c) {
			handler.announcePresence(userID, false)
		}
		_ = c.Close()
	}()
	handler.announcePresence(userID, true)

	for {
		var payload req.TypingRequest
		if err := c.ReadJSON(&payload); err != nil {
			handler.Log.WS.Trace.Trace().Err(err).Str("userId", userID).Msg("Read loop ended")
			return
		}
		handler.Log.WS.Stream.Trace().Str("userId", userID).Str("type", payload.Type).Msg("Frame received")

		if payload.Type != string(enum.EventTyping) || payload.ReceiverID == "" {
			continue
		}
		handler.relayTyping(userID, payload)
	}
}

func (handler *WebSocketHandler) relayTyping(senderID string, payload req.TypingRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	isContact, err := handler.ContactRepository.IsContact(ctx, handler.DB, senderID, payload.ReceiverID)
	if err != nil {
		handler.Log.WS.Error.Error().Err(err).Str("userId", senderID).Msg("Failed to check contact for typing")
		return
	}
	if !isContact {
		handler.Log.WS.Warning.Warn().Str("userId", senderID).Str("receiverId", payload.ReceiverID).Msg("Typing to a non-contact ignored")
		return
	}
	handler.Notify(payload.ReceiverID, dto.Event{
		Type: enum.EventTyping,
		Data: dto.TypingEvent{SenderID: senderID, Typing: payload.Typing},
	})
}

// announcePresence tells the user's contacts about the change and, when the
// user comes online, tells the user which contacts are already online.
func (handler *WebSocketHandler) announcePresence(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	contactIDs, err := handler.ContactRepository.FindContactIDs(ctx, handler.DB, userID)
	if err != nil {
		handler.Log.WS.Error.Error().Err(err).Str("userId", userID).Msg("Failed to load contacts for presence")
		return
	}
	for _, contactID := range contactIDs {
		if !handler.IsOnline(contactID) {
			continue
		}
		handler.Notify(contactID, dto.Event{Type: enum.EventPresence, Data: dto.PresenceEvent{UserID: userID, Online: online}})
		if online {
			handler.Notify(userID, dto.Event{Type: enum.EventPresence, Data: dto.PresenceEvent{UserID: contactID, Online: true}})
		}
	}
}

func (handler *WebSocketHandler) registerClient(userID string, conn *websocket.Conn) {
	handler.Lock()
	defer handler.Unlock()

	if previous, ok := handler.Clients[userID]; ok && previous != conn {
		_ = previous.Close()
		handler.Log.WS.Info.Info().Str("userId", userID).Msg("Replaced previous connection")
	} else {
		middleware.WSConnections.Inc()
	}
	handler.Clients[userID] = conn
	handler.Log.WS.Info.Info().Str("userId", userID).Int("online", len(handler.Clients)).Msg("Client connected")
}

// removeClient reports whether conn was still the user's live connection.
func (handler *WebSocketHandler) removeClient(userID string, conn *websocket.Conn) bool {
	handler.Lock()
	defer handler.Unlock()

	if current, ok := handler.Clients[userID]; !ok || current != conn {
		return false
	}
	delete(handler.Clients, userID)
	middleware.WSConnections.Dec()
	handler.Log.WS.Info.Info().Str("userId", userID).Msg("Client disconnected")
	return true
}

func (handler *WebSocketHandler) runBroadcast() {
	for {
		select {
		case <-handler.done:
			return
		case msg := <-handler.Broadcast:
			handler.RLock()
			conn := handler.Clients[msg.UserID]
			handler.RUnlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteJSON(msg.Event); err != nil {
				handler.Log.WS.Warning.Warn().Err(err).Str("userId", msg.UserID).Msg("Error pushing event")
				_ = conn.Close()
				continue
			}
			handler.Log.WS.Stream.Trace().Str("userId", msg.UserID).Str("type", string(msg.Event.Type)).Msg("Event pushed")
		}
	}
}

// Close stops the writer and drops every live connection.
func (handler *WebSocketHandler) Close() {
	handler.closeOnce.Do(func() {
		close(handler.done)
		handler.Lock()
		defer handler.Unlock()
		for userID, conn := range handler.Clients {
			_ = conn.Close()
			delete(handler.Clients, userID)
			middleware.WSConnections.Dec()
		}
	})
}
