package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/internal/utils"
	"github.com/noah-isme/coursehub-api/pkg/validation"
)

const defaultKeepAlive = 30 * time.Second

// NotificationHandler serves the notification list and its live streams.
type NotificationHandler struct {
	service   service.NotificationService
	validator *validation.Validator
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, validator *validation.Validator, logger zerolog.Logger, keepAlive time.Duration) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &NotificationHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "notification_handler").Logger(),
		keepAlive: keepAlive,
	}
}

// Register binds the notification routes. streamAuth must accept the token
// as a query parameter for EventSource and WebSocket clients.
func (h *NotificationHandler) Register(router fiber.Router, protected, streamAuth fiber.Handler) {
	router.Get("", protected, h.list)
	router.Get("/stream", streamAuth, h.stream)
	router.Get("/ws", streamAuth, h.upgrade, websocket.New(h.serveWebSocket))
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	var query dto.NotificationListQuery
	if err := c.QueryParser(&query); err != nil {
		return badRequest(c, "invalid limit or offset")
	}

	notifications, err := h.service.List(c.UserContext(), userIDFromContext(c), query)
	if err != nil {
		return respondError(c, h.validator, h.logger, err)
	}

	return utils.OK(c, notifications, "notifications retrieved", fiber.Map{"limit": query.Limit, "offset": query.Offset})
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	stream, cleanup := h.service.Subscribe(userID, "sse")
	logger := requestLogger(h.logger, c).With().Uint("user_id", userID).Logger()
	keepAlive := h.keepAlive

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cleanup()

		if err := writeKeepAlive(w); err != nil {
			return
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-stream:
				if !ok {
					return
				}
				if err := writeNotificationEvent(w, notification); err != nil {
					logger.Debug().Err(err).Msg("failed to write notification event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					logger.Debug().Err(err).Msg("notification stream closed")
					return
				}
			}
		}
	})

	return nil
}

func (h *NotificationHandler) upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *NotificationHandler) serveWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(uint)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	logger := h.logger.With().Uint("user_id", userID).Logger()
	stream, cleanup := h.service.Subscribe(userID, "websocket")
	defer cleanup()

	// Clients never send data; reading only detects the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	logger.Info().Msg("notification websocket connected")
	defer logger.Info().Msg("notification websocket disconnected")

	for {
		select {
		case notification, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(notification); err != nil {
				logger.Debug().Err(err).Msg("failed to write notification")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func writeNotificationEvent(w *bufio.Writer, notification dto.NotificationResponse) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: notification\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
