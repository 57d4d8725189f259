package realtime

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anonto42/ustagram/backend/internal/metrics"
)

var ErrUnknownConnection = errors.New("realtime: unknown connection")

// Connection is a live client endpoint the registry can push frames to.
// Send must not block; it reports false when the frame was not queued.
type Connection interface {
	ID() string
	UserID() uint
	Send(frame []byte) bool
}

// Registry tracks which connections belong to which named groups.
// All methods are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	conns       map[string]Connection
	groups      map[string]map[string]Connection
	memberships map[string]map[string]struct{}
	log         *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		conns:       make(map[string]Connection),
		groups:      make(map[string]map[string]Connection),
		memberships: make(map[string]map[string]struct{}),
		log:         log,
	}
}

func (r *Registry) Register(conn Connection) {
	r.mu.Lock()
	_, exists := r.conns[conn.ID()]
	r.conns[conn.ID()] = conn
	if _, ok := r.memberships[conn.ID()]; !ok {
		r.memberships[conn.ID()] = make(map[string]struct{})
	}
	r.mu.Unlock()

	if !exists {
		metrics.ActiveConnections.Inc()
		r.log.Debug("realtime connection registered", slog.String("conn_id", conn.ID()), slog.Uint64("user_id", uint64(conn.UserID())))
	}
}

// Unregister forgets the connection and every group it had joined.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	if _, ok := r.conns[connID]; !ok {
		r.mu.Unlock()
		return
	}
	for group := range r.memberships[connID] {
		r.removeMember(group, connID)
	}
	delete(r.memberships, connID)
	delete(r.conns, connID)
	r.mu.Unlock()

	metrics.ActiveConnections.Dec()
	r.log.Debug("realtime connection unregistered", slog.String("conn_id", connID))
}

// Join adds the connection to group. Joining twice is a no-op.
func (r *Registry) Join(connID, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("join %s: %w", group, ErrUnknownConnection)
	}
	members, ok := r.groups[group]
	if !ok {
		members = make(map[string]Connection)
		r.groups[group] = members
	}
	members[connID] = conn
	r.memberships[connID][group] = struct{}{}
	return nil
}

// Leave removes the connection from group; leaving a group never joined is a no-op.
func (r *Registry) Leave(connID, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if groups, ok := r.memberships[connID]; ok {
		delete(groups, group)
	}
	r.removeMember(group, connID)
}

// caller holds r.mu
func (r *Registry) removeMember(group, connID string) {
	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// Publish pushes event to every current member of group and returns how many
// connections accepted the frame. Members with a full buffer miss it.
func (r *Registry) Publish(group, event string, payload any) (int, error) {
	frame, err := encode(event, payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", event, err)
	}

	r.mu.RLock()
	targets := make([]Connection, 0, len(r.groups[group]))
	for _, conn := range r.groups[group] {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if conn.Send(frame) {
			delivered++
			continue
		}
		metrics.RealtimeDropped.WithLabelValues(event).Inc()
		r.log.Warn("realtime frame dropped",
			slog.String("conn_id", conn.ID()),
			slog.String("group", group),
			slog.String("event", event),
		)
	}
	metrics.RealtimePublished.WithLabelValues(event).Add(float64(delivered))
	return delivered, nil
}

// PublishToUser pushes event to the personal group of userID.
func (r *Registry) PublishToUser(userID uint, event string, payload any) (int, error) {
	return r.Publish(UserGroup(userID), event, payload)
}

func (r *Registry) GroupSize(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Groups lists the groups connID currently belongs to.
func (r *Registry) Groups(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]string, 0, len(r.memberships[connID]))
	for g := range r.memberships[connID] {
		groups = append(groups, g)
	}
	return groups
}
