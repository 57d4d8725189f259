package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// CommentService is the comment workflow the handler drives.
type CommentService interface {
	Create(ctx context.Context, postID string, authorID uint, content string) (*models.CommentResponse, error)
	Update(ctx context.Context, commentID, callerID uint, content string) (*models.CommentResponse, error)
	Delete(ctx context.Context, commentID, callerID uint) error
	GetByID(ctx context.Context, id uint) (*models.CommentResponse, error)
	ListByPost(ctx context.Context, postID string) ([]models.CommentResponse, error)
	Recent(ctx context.Context, limit int) ([]models.CommentResponse, error)
}

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments CommentService
	log      *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments CommentService, log *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.GET("/comments/recent", h.GetRecentComments)
	g.GET("/comments/:id", h.GetComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.comments.Create(c.Request().Context(), c.Param("post_id"), userID, req.Content)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	comments, err := h.comments.ListByPost(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetRecentComments(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	comments, err := h.comments.Recent(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseUintParam(c, "id", "comment ID")
	if err != nil {
		return err
	}
	resp, err := h.comments.GetByID(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateComment edits a comment; only its author may do so
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id", "comment ID")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.comments.Update(c.Request().Context(), id, userID, req.Content)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteComment removes a comment; only its author may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id", "comment ID")
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.Request().Context(), id, userID); err != nil {
		return toHTTPError(h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
