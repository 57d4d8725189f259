package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	defaultSendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var (
	errForeignUserGroup = errors.New("cannot join another user's notification group")
	errMissingTarget    = errors.New("target is required")
)

// Options tunes a single socket connection.
type Options struct {
	SendBuffer int
	// Groups are joined right after the connection is registered, in
	// addition to the user's personal group.
	Groups []string
}

// Client is a middleman between the websocket connection and the registry.
type Client struct {
	id       string
	userID   uint
	registry *Registry
	conn     *websocket.Conn
	log      *slog.Logger

	// Buffered channel of outbound frames. Never closed; done signals shutdown.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(registry *Registry, conn *websocket.Conn, userID uint, buffer int, log *slog.Logger) *Client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Client{
		id:       uuid.NewString(),
		userID:   userID,
		registry: registry,
		conn:     conn,
		log:      log,
		send:     make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
}

func (c *Client) ID() string   { return c.id }
func (c *Client) UserID() uint { return c.userID }

// Send queues frame without blocking and reports whether it was accepted.
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump pumps commands from the websocket connection to the registry.
// It owns the connection lifecycle: when it returns, the client is gone.
func (c *Client) readPump() {
	defer func() {
		c.registry.Unregister(c.id)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("realtime read failed", slog.String("conn_id", c.id), slog.Any("error", err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.sendError("malformed command")
			continue
		}
		if err := c.handle(cmd); err != nil {
			c.sendError(err.Error())
		}
	}
}

// writePump pumps frames from the send buffer to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handle(cmd Command) error {
	target := strings.TrimSpace(cmd.Target)

	switch cmd.Action {
	case ActionJoinPostGroup:
		if target == "" {
			return errMissingTarget
		}
		return c.registry.Join(c.id, PostGroup(target))
	case ActionLeavePostGroup:
		if target == "" {
			return errMissingTarget
		}
		c.registry.Leave(c.id, PostGroup(target))
		return nil
	case ActionJoinNotificationGroup:
		userID, err := c.ownUserTarget(target)
		if err != nil {
			return err
		}
		return c.registry.Join(c.id, UserGroup(userID))
	case ActionLeaveNotificationGroup:
		userID, err := c.ownUserTarget(target)
		if err != nil {
			return err
		}
		c.registry.Leave(c.id, UserGroup(userID))
		return nil
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}

// ownUserTarget resolves a notification group target; an empty target means the caller.
func (c *Client) ownUserTarget(target string) (uint, error) {
	if target == "" {
		return c.userID, nil
	}
	id, err := strconv.ParseUint(target, 10, 64)
	if err != nil || uint(id) != c.userID {
		return 0, errForeignUserGroup
	}
	return c.userID, nil
}

func (c *Client) sendError(msg string) {
	frame, err := encode(EventError, errorPayload{Message: msg})
	if err != nil {
		return
	}
	c.Send(frame)
}

// ServeWs upgrades the request, registers the client for userID and joins
// its personal notification group plus opts.Groups.
func ServeWs(registry *Registry, w http.ResponseWriter, r *http.Request, userID uint, opts Options, log *slog.Logger) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	client := newClient(registry, conn, userID, opts.SendBuffer, log)
	registry.Register(client)

	groups := append([]string{UserGroup(userID)}, opts.Groups...)
	for _, g := range groups {
		if isUserGroup(g) && g != UserGroup(userID) {
			continue
		}
		if err := registry.Join(client.id, g); err != nil {
			log.Error("realtime auto-join failed", slog.String("group", g), slog.Any("error", err))
		}
	}

	go client.writePump()
	go client.readPump()
	return nil
}
