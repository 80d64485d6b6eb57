package controller_test

import (
	"net/http"
	"testing"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Register(t *testing.T) {
	engine, _ := setupTestServer(t)

	t.Run("registers and returns a token", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPost, "/api/v1/users/register", "", map[string]interface{}{
			"name":     "Jane Doe",
			"email":    "jane@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.NotEmpty(t, body["token"])
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPost, "/api/v1/users/register", "", map[string]interface{}{
			"name":     "Jane Again",
			"email":    "jane@example.com",
			"password": "another-pass",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_EMAIL_EXISTS")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPost, "/api/v1/users/register", "", map[string]interface{}{
			"name":     "Short",
			"email":    "short@example.com",
			"password": "abc",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	engine, _ := setupTestServer(t)

	w := performRequest(t, engine, http.MethodPost, "/api/v1/users/register", "", map[string]interface{}{
		"name":     "Jane Doe",
		"email":    "jane@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("valid credentials", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
			"email":    "jane@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decodeBody(t, w)["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
			"email":    "jane@example.com",
			"password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_INVALID_CREDENTIALS")
	})
}

func TestAuthController_Profile(t *testing.T) {
	engine, database := setupTestServer(t)
	user, token := createTestUser(t, database, "jane@example.com", model.RoleUser)

	t.Run("reads own profile", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodGet, "/api/v1/users/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.Email)
	})

	t.Run("updates name", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPut, "/api/v1/users/profile", token, map[string]interface{}{
			"name": "Jane Smith",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Jane Smith")
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodPut, "/api/v1/users/profile", token, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := performRequest(t, engine, http.MethodGet, "/api/v1/users/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthController_Logout(t *testing.T) {
	engine, database := setupTestServer(t)
	_, token := createTestUser(t, database, "jane@example.com", model.RoleUser)

	// Without Redis the call still succeeds; the token just ages out
	w := performRequest(t, engine, http.MethodPost, "/api/v1/users/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
