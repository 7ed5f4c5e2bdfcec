package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	w := doJSON(h.router, "POST", "/user/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	// The password must never appear in any response.
	assert.NotContains(t, w.Body.String(), "hunter2hunter2")
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	body := map[string]string{"email": "alice@example.com", "password": "hunter2hunter2"}

	w := doJSON(h.router, "POST", "/user/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(h.router, "POST", "/user/signup", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignUp_MissingFields(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	w := doJSON(h.router, "POST", "/user/signup", "", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignIn(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	signUpUser(t, h, "alice@example.com")

	w := doJSON(h.router, "POST", "/user/signin", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestSignIn_WrongPassword(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	signUpUser(t, h, "alice@example.com")

	w := doJSON(h.router, "POST", "/user/signin", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	w := doJSON(h.router, "POST", "/user/signin", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	_, pair, err := h.auth.SignUp("Alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	w := doJSON(h.router, "POST", "/user/refresh", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	// Reissued pairs keep the full sign-in lifetime.
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestRefresh_WithAccessToken(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	token := signUpUser(t, h, "alice@example.com")

	w := doJSON(h.router, "POST", "/user/refresh", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	h, cleanup := setupRouter(t)
	defer cleanup()

	w := doJSON(h.router, "POST", "/user/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
