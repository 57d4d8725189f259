package handlers

import (
	"net/http"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/ustagram/backend/internal/middleware"
	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func withFirebaseToken(token *auth.Token) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextFirebaseTokenKey, token)
			return next(c)
		}
	}
}

func TestAuthHandler_SignupAndSignIn(t *testing.T) {
	users := newMemUsers()
	e, g := newTestEcho(0)
	NewAuthHandler(users, testSecret, time.Hour, testLog).RegisterAuthRoutes(g, withFirebaseToken(nil))

	body := `{"full_name":"Carl Comment","username":"carl","email":"Carl@Example.com","password":"hunter2hunter2"}`
	rec := doRequest(e, http.MethodPost, "/api/signup", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[tokenResponse](t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "carl", resp.User.Username)

	claims, err := middleware.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "carl@example.com", claims.Email)

	stored, err := users.GetUserByEmail(t.Context(), "carl@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", stored.Password, "password is stored hashed")

	assert.Equal(t, http.StatusConflict, doRequest(e, http.MethodPost, "/api/signup", body).Code)

	rec = doRequest(e, http.MethodPost, "/api/signin", `{"email":"carl@example.com","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(e, http.MethodPost, "/api/signin", `{"email":"carl@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(e, http.MethodPost, "/api/signin", `{"email":"nobody@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	e, g := newTestEcho(0)
	NewAuthHandler(newMemUsers(), testSecret, time.Hour, testLog).RegisterAuthRoutes(g, withFirebaseToken(nil))

	rec := doRequest(e, http.MethodPost, "/api/signup", `{"full_name":"C","username":"c!","email":"bad","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_FirebaseLogin(t *testing.T) {
	t.Run("links an existing account by email", func(t *testing.T) {
		users := newMemUsers(models.User{ID: 1, Username: "olivia", Email: "olivia@example.com"})
		token := &auth.Token{UID: "fb-uid-1", Claims: map[string]interface{}{"email": "Olivia@example.com"}}
		e, g := newTestEcho(0)
		NewAuthHandler(users, testSecret, time.Hour, testLog).RegisterAuthRoutes(g, withFirebaseToken(token))

		rec := doRequest(e, http.MethodPost, "/api/firebase-login", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, uint(1), decode[tokenResponse](t, rec).User.ID)

		linked, err := users.GetUserByFirebaseUID(t.Context(), "fb-uid-1")
		require.NoError(t, err)
		assert.Equal(t, uint(1), linked.ID)
	})

	t.Run("creates a new account", func(t *testing.T) {
		users := newMemUsers()
		token := &auth.Token{UID: "abc-123", Claims: map[string]interface{}{"email": "new@example.com", "name": "New Person"}}
		e, g := newTestEcho(0)
		NewAuthHandler(users, testSecret, time.Hour, testLog).RegisterAuthRoutes(g, withFirebaseToken(token))

		rec := doRequest(e, http.MethodPost, "/api/firebase-login", "")
		require.Equal(t, http.StatusOK, rec.Code)
		user := decode[tokenResponse](t, rec).User
		assert.Equal(t, "fbabc123", user.Username)
		assert.Equal(t, "New Person", user.FullName)
	})

	t.Run("rejects accounts without email", func(t *testing.T) {
		token := &auth.Token{UID: "anon", Claims: map[string]interface{}{}}
		e, g := newTestEcho(0)
		NewAuthHandler(newMemUsers(), testSecret, time.Hour, testLog).RegisterAuthRoutes(g, withFirebaseToken(token))

		assert.Equal(t, http.StatusBadRequest, doRequest(e, http.MethodPost, "/api/firebase-login", "").Code)
	})

	t.Run("missing token", func(t *testing.T) {
		e, g := newTestEcho(0)
		NewAuthHandler(newMemUsers(), testSecret, time.Hour, testLog).RegisterAuthRoutes(g, withFirebaseToken(nil))

		assert.Equal(t, http.StatusUnauthorized, doRequest(e, http.MethodPost, "/api/firebase-login", "").Code)
	})
}
