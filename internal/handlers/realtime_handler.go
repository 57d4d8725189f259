package handlers

import (
	"log/slog"
	"strings"

	"github.com/anonto42/ustagram/backend/internal/realtime"
	"github.com/labstack/echo/v4"
)

// RealtimeHandler upgrades authenticated requests to socket connections.
type RealtimeHandler struct {
	registry   *realtime.Registry
	sendBuffer int
	log        *slog.Logger
}

func NewRealtimeHandler(registry *realtime.Registry, sendBuffer int, log *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{registry: registry, sendBuffer: sendBuffer, log: log}
}

func (h *RealtimeHandler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/comments", h.Comments)
	g.GET("/notifications", h.Notifications)
}

// Comments serves the comment stream. ?post_id=a,b pre-joins those posts;
// more can be joined later with JoinPostGroup.
func (h *RealtimeHandler) Comments(c echo.Context) error {
	var groups []string
	for _, id := range strings.Split(c.QueryParam("post_id"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			groups = append(groups, realtime.PostGroup(id))
		}
	}
	return h.serve(c, groups)
}

// Notifications serves the caller's personal notification stream.
func (h *RealtimeHandler) Notifications(c echo.Context) error {
	return h.serve(c, nil)
}

func (h *RealtimeHandler) serve(c echo.Context, groups []string) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	opts := realtime.Options{SendBuffer: h.sendBuffer, Groups: groups}
	if err := realtime.ServeWs(h.registry, c.Response(), c.Request(), userID, opts, h.log); err != nil {
		// the upgrader has already written the HTTP error
		h.log.Warn("websocket upgrade failed", slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
	}
	return nil
}
