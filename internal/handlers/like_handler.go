package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeNotifier is the dispatcher hook fired after a like is stored.
type LikeNotifier interface {
	NotifyLike(ctx context.Context, postID string, likerID uint) (*models.Notification, error)
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	notifier       LikeNotifier
	log            *slog.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, notifier LikeNotifier, log *slog.Logger) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		notifier:       notifier,
		log:            log,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes", h.GetLikesForPost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// LikePost handles liking a post and notifies the post owner
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return toHTTPError(h.log, err)
	}

	hasLiked, err := h.likeRepository.HasUserLikedPost(ctx, postID, userID)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
	}

	like := &models.Like{PostID: postID, UserID: userID}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		return toHTTPError(h.log, err)
	}

	if err := h.postRepository.IncrementLikesCount(ctx, postID, 1); err != nil {
		h.log.Error("increment likes count", slog.String("post_id", postID), slog.Any("error", err))
	}
	if _, err := h.notifier.NotifyLike(ctx, postID, userID); err != nil {
		h.log.Error("like notification failed", slog.String("post_id", postID), slog.Any("error", err))
	}

	return c.JSON(http.StatusCreated, like)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("post_id")

	if err := h.likeRepository.DeleteLike(ctx, postID, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return toHTTPError(h.log, err)
	}

	if err := h.postRepository.IncrementLikesCount(ctx, postID, -1); err != nil {
		h.log.Error("decrement likes count", slog.String("post_id", postID), slog.Any("error", err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LikeHandler) GetLikesForPost(c echo.Context) error {
	likes, err := h.likeRepository.GetLikesByPostID(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, likes)
}

// GetLikesCountForPost retrieves the total number of likes for a specific post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("post_id")
	count, err := h.likeRepository.GetLikesCountByPostID(c.Request().Context(), postID)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "likes_count": count})
}

// GetUserLikeStatusForPost checks if the authenticated user has liked a specific post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	hasLiked, err := h.likeRepository.HasUserLikedPost(c.Request().Context(), postID, userID)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "user_id": userID, "has_liked": hasLiked})
}
