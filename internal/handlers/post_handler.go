package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	defaultPostLimit = 10
	maxPostLimit     = 50
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	log            *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, log *slog.Logger) *PostHandler {
	return &PostHandler{postRepository: postRepo, log: log}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // all posts, or one author's with ?author_id=
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID:  userID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves multiple posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxPostLimit {
		limit = defaultPostLimit
	}

	ctx := c.Request().Context()
	var (
		posts []models.Post
		err   error
	)
	if raw := c.QueryParam("author_id"); raw != "" {
		authorID, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		posts, err = h.postRepository.GetPostsByAuthor(ctx, uint(authorID), skip, limit)
	} else {
		posts, err = h.postRepository.GetAllPosts(ctx, skip, limit)
	}
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates an existing post owned by the caller
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("id")
	existing, err := h.ownedPost(c, postID, userID)
	if err != nil {
		return err
	}

	if req.Content != "" {
		existing.Content = req.Content
	}
	if req.ImageURLs != nil {
		existing.ImageURLs = req.ImageURLs
	}
	if err := h.postRepository.UpdatePost(ctx, postID, existing); err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, existing)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	postID := c.Param("id")
	if _, err := h.ownedPost(c, postID, userID); err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return toHTTPError(h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) ownedPost(c echo.Context, postID string, userID uint) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return nil, toHTTPError(h.log, err)
	}
	if post.AuthorID != userID {
		return nil, toHTTPError(h.log, fmt.Errorf("post %s: %w", postID, models.ErrForbidden))
	}
	return post, nil
}
