package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/ustagram/backend/internal/models"
)

type memLikes struct {
	mu      sync.Mutex
	likes   []models.Like
	nextID  uint
	failErr error
}

func (m *memLikes) CreateLike(_ context.Context, like *models.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.nextID++
	like.ID = m.nextID
	m.likes = append(m.likes, *like)
	return nil
}

func (m *memLikes) DeleteLike(_ context.Context, postID string, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.likes {
		if l.PostID == postID && l.UserID == userID {
			m.likes = append(m.likes[:i], m.likes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("like: %w", models.ErrNotFound)
}

func (m *memLikes) GetLikesByPostID(_ context.Context, postID string) ([]models.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Like{}
	for _, l := range m.likes {
		if l.PostID == postID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLikes) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	likes, _ := m.GetLikesByPostID(ctx, postID)
	return int64(len(likes)), nil
}

func (m *memLikes) HasUserLikedPost(_ context.Context, postID string, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.likes {
		if l.PostID == postID && l.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// memPosts only tracks existence and counters.
type memPosts struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newMemPosts(posts ...models.Post) *memPosts {
	m := &memPosts{posts: map[string]*models.Post{}}
	for i := range posts {
		p := posts[i]
		m.posts[p.ID.Hex()] = &p
	}
	return m
}

func (m *memPosts) get(id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return p, nil
}

func (m *memPosts) CreatePost(context.Context, *models.Post) error { return nil }

func (m *memPosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) GetPostsByAuthor(context.Context, uint, int64, int64) ([]models.Post, error) {
	return []models.Post{}, nil
}

func (m *memPosts) GetAllPosts(context.Context, int64, int64) ([]models.Post, error) {
	return []models.Post{}, nil
}

func (m *memPosts) UpdatePost(context.Context, string, *models.Post) error { return nil }
func (m *memPosts) DeletePost(context.Context, string) error { return nil }

func (m *memPosts) IncrementLikesCount(_ context.Context, postID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(postID)
	if err != nil {
		return err
	}
	p.LikesCount += delta
	return nil
}

func (m *memPosts) IncrementCommentsCount(_ context.Context, postID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(postID)
	if err != nil {
		return err
	}
	p.CommentsCount += delta
	return nil
}

type memUsers struct {
	users map[uint]models.User
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{users: map[uint]models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	user.ID = uint(len(m.users) + 1)
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	return &u, nil
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", models.ErrNotFound)
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (m *memUsers) UpdateUser(_ context.Context, user *models.User) error {
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) SearchUsers(context.Context, string) ([]models.User, error) {
	return []models.User{}, nil
}

type memFollows struct {
	follows []models.Follow
	users   *memUsers
}

func (m *memFollows) CreateFollow(_ context.Context, f *models.Follow) error {
	f.ID = uint(len(m.follows) + 1)
	m.follows = append(m.follows, *f)
	return nil
}

func (m *memFollows) DeleteFollow(_ context.Context, followerID, followingID uint) error {
	for i, f := range m.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			m.follows = append(m.follows[:i], m.follows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("follow relationship: %w", models.ErrNotFound)
}

func (m *memFollows) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	for _, f := range m.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFollows) collect(pick func(models.Follow) (uint, bool)) []models.User {
	out := []models.User{}
	for _, f := range m.follows {
		if id, ok := pick(f); ok {
			if u, ok := m.users.users[id]; ok {
				out = append(out, u)
			}
		}
	}
	return out
}

func (m *memFollows) GetFollowers(_ context.Context, userID uint) ([]models.User, error) {
	return m.collect(func(f models.Follow) (uint, bool) { return f.FollowerID, f.FollowingID == userID }), nil
}

func (m *memFollows) GetFollowing(_ context.Context, userID uint) ([]models.User, error) {
	return m.collect(func(f models.Follow) (uint, bool) { return f.FollowingID, f.FollowerID == userID }), nil
}

type notifyCall struct {
	Target string
	Actor  uint
}

type stubNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (s *stubNotifier) record(target string, actor uint) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, notifyCall{Target: target, Actor: actor})
	if s.err != nil {
		return nil, s.err
	}
	return &models.Notification{}, nil
}

func (s *stubNotifier) NotifyLike(_ context.Context, postID string, likerID uint) (*models.Notification, error) {
	return s.record(postID, likerID)
}

func (s *stubNotifier) NotifyNewFollower(_ context.Context, userID, followerID uint) (*models.Notification, error) {
	return s.record(fmt.Sprint(userID), followerID)
}
