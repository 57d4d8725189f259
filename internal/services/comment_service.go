package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/realtime"
	"github.com/anonto42/ustagram/backend/internal/repositories"
)

const maxRecentComments = 100

// PostStore is the slice of the post repository comments need.
type PostStore interface {
	PostLookup
	IncrementCommentsCount(ctx context.Context, postID string, delta int) error
}

type CommentNotifier interface {
	NotifyComment(ctx context.Context, postID string, commenterID uint, text string) (*models.Notification, error)
}

// CommentService stores comments and broadcasts their lifecycle to the
// post's realtime group.
type CommentService struct {
	comments repositories.CommentRepository
	posts    PostStore
	users    UserLookup
	pub      GroupPublisher
	notifier CommentNotifier
	log      *slog.Logger
}

func NewCommentService(comments repositories.CommentRepository, posts PostStore, users UserLookup, pub GroupPublisher, notifier CommentNotifier, log *slog.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, pub: pub, notifier: notifier, log: log}
}

func (s *CommentService) Create(ctx context.Context, postID string, authorID uint, content string) (*models.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: authorID, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.posts.IncrementCommentsCount(ctx, postID, 1); err != nil {
		s.log.Error("increment comments count", slog.String("post_id", postID), slog.Any("error", err))
	}

	resp := models.NewCommentResponse(comment, author.ToSummary())
	s.publish(postID, realtime.EventReceiveComment, resp)

	if _, err := s.notifier.NotifyComment(ctx, postID, authorID, content); err != nil {
		s.log.Error("comment notification failed",
			slog.String("post_id", postID),
			slog.Uint64("comment_id", uint64(comment.ID)),
			slog.Any("error", err),
		)
	}
	return &resp, nil
}

// Update changes the content of a comment owned by callerID.
func (s *CommentService) Update(ctx context.Context, commentID, callerID uint, content string) (*models.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}
	comment, err := s.owned(ctx, commentID, callerID)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	resp := models.NewCommentResponse(comment, s.summary(ctx, comment.UserID))
	return &resp, nil
}

// Delete removes a comment owned by callerID and tells the post's group.
func (s *CommentService) Delete(ctx context.Context, commentID, callerID uint) error {
	comment, err := s.owned(ctx, commentID, callerID)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.publish(comment.PostID, realtime.EventRemoveComment, commentID)
	if err := s.posts.IncrementCommentsCount(ctx, comment.PostID, -1); err != nil {
		s.log.Error("decrement comments count", slog.String("post_id", comment.PostID), slog.Any("error", err))
	}
	return nil
}

func (s *CommentService) GetByID(ctx context.Context, id uint) (*models.CommentResponse, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := models.NewCommentResponse(comment, s.summary(ctx, comment.UserID))
	return &resp, nil
}

// ListByPost returns the comments of a post, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.CommentResponse, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, comments), nil
}

// Recent returns the latest comments across all posts. limit is clamped to [1, 100].
func (s *CommentService) Recent(ctx context.Context, limit int) ([]models.CommentResponse, error) {
	if limit <= 0 || limit > maxRecentComments {
		limit = maxRecentComments
	}
	comments, err := s.comments.GetRecentComments(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, comments), nil
}

func (s *CommentService) owned(ctx context.Context, commentID, callerID uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != callerID {
		return nil, fmt.Errorf("comment %d: %w", commentID, models.ErrForbidden)
	}
	return comment, nil
}

func (s *CommentService) withAuthors(ctx context.Context, comments []models.Comment) []models.CommentResponse {
	authors := make(map[uint]models.UserSummary)
	out := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		uid := comments[i].UserID
		author, ok := authors[uid]
		if !ok {
			author = s.summary(ctx, uid)
			authors[uid] = author
		}
		out = append(out, models.NewCommentResponse(&comments[i], author))
	}
	return out
}

// summary falls back to an id-only summary when the author can't be loaded.
func (s *CommentService) summary(ctx context.Context, userID uint) models.UserSummary {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.UserSummary{ID: userID}
	}
	return user.ToSummary()
}

func (s *CommentService) publish(postID, event string, payload any) {
	if _, err := s.pub.Publish(realtime.PostGroup(postID), event, payload); err != nil {
		s.log.Warn("realtime publish failed", slog.String("post_id", postID), slog.String("event", event), slog.Any("error", err))
	}
}
