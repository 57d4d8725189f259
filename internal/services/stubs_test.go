package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/google/uuid"
)

type published struct {
	target  string
	event   string
	payload any
}

// recordingPublisher captures every push; err, when set, is returned after recording.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(group, event string, payload any) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{target: group, event: event, payload: payload})
	return 1, p.err
}

func (p *recordingPublisher) PublishToUser(userID uint, event string, payload any) (int, error) {
	return p.Publish(fmt.Sprintf("user:%d", userID), event, payload)
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type stubPosts struct {
	GetPostByIDFunc            func(ctx context.Context, id string) (*models.Post, error)
	IncrementCommentsCountFunc func(ctx context.Context, postID string, delta int) error
}

func (s *stubPosts) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return s.GetPostByIDFunc(ctx, id)
}

func (s *stubPosts) IncrementCommentsCount(ctx context.Context, postID string, delta int) error {
	if s.IncrementCommentsCountFunc == nil {
		return nil
	}
	return s.IncrementCommentsCountFunc(ctx, postID, delta)
}

type stubUsers struct {
	GetUserByIDFunc func(ctx context.Context, id uint) (*models.User, error)
}

func (s *stubUsers) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.GetUserByIDFunc(ctx, id)
}

// usersByID serves lookups from a fixed set and reports ErrNotFound otherwise.
func usersByID(users ...models.User) *stubUsers {
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &stubUsers{GetUserByIDFunc: func(_ context.Context, id uint) (*models.User, error) {
		u, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		return &u, nil
	}}
}

func postsByID(posts map[string]uint) *stubPosts {
	return &stubPosts{GetPostByIDFunc: func(_ context.Context, id string) (*models.Post, error) {
		owner, ok := posts[id]
		if !ok {
			return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
		}
		return &models.Post{AuthorID: owner, Content: "post " + id}, nil
	}}
}

// memNotifications is an in-memory notification store with the same
// observable behaviour as the postgres repository.
type memNotifications struct {
	mu        sync.Mutex
	items     map[uuid.UUID]models.Notification
	clock     time.Time
	createErr error
}

func newMemNotifications() *memNotifications {
	return &memNotifications{
		items: make(map[uuid.UUID]models.Notification),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.clock = m.clock.Add(time.Second)
	n.ID = uuid.New()
	n.CreatedAt = m.clock
	n.IsRead = false
	m.items[n.ID] = *n
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	return &n, nil
}

func (m *memNotifications) List(_ context.Context) ([]models.Notification, error) {
	return m.filter(func(models.Notification) bool { return true }), nil
}

func (m *memNotifications) ListByReceiver(_ context.Context, receiverID uint) ([]models.Notification, error) {
	return m.filter(func(n models.Notification) bool { return n.ReceiverID == receiverID }), nil
}

func (m *memNotifications) CountUnread(_ context.Context, receiverID uint) (int64, error) {
	return int64(len(m.filter(func(n models.Notification) bool { return n.ReceiverID == receiverID && !n.IsRead }))), nil
}

func (m *memNotifications) MarkAsRead(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	n.IsRead = true
	m.items[id] = n
	return nil
}

func (m *memNotifications) MarkAllAsRead(_ context.Context, receiverID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var marked int64
	for id, n := range m.items {
		if n.ReceiverID == receiverID && !n.IsRead {
			n.IsRead = true
			m.items[id] = n
			marked++
		}
	}
	return marked, nil
}

func (m *memNotifications) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memNotifications) filter(keep func(models.Notification) bool) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for _, n := range m.items {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type stubComments struct {
	mu       sync.Mutex
	nextID   uint
	items    map[uint]models.Comment
	failNext error
}

func newStubComments() *stubComments {
	return &stubComments{items: make(map[uint]models.Comment)}
}

func (s *stubComments) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now().UTC().Add(time.Duration(s.nextID) * time.Second)
	s.items[c.ID] = *c
	return nil
}

func (s *stubComments) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

func (s *stubComments) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.items {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubComments) GetRecentComments(ctx context.Context, limit int) ([]models.Comment, error) {
	s.mu.Lock()
	out := []models.Comment{}
	for _, c := range s.items {
		out = append(out, c)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubComments) UpdateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = *c
	return nil
}

func (s *stubComments) DeleteComment(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type stubNotifier struct {
	calls []string
	err   error
}

func (s *stubNotifier) NotifyComment(_ context.Context, postID string, commenterID uint, text string) (*models.Notification, error) {
	s.calls = append(s.calls, fmt.Sprintf("%s/%d/%s", postID, commenterID, text))
	return nil, s.err
}
