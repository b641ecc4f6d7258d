package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/types"
)

func register(t *testing.T, env *testEnv, name, email, password string) types.LoginResponse {
	t.Helper()
	rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.LoginResponse](t, rec)
}

func tokenCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookieName {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Jane Doe", "email": "jane@example.com", "password": "correct-horse",
	}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[types.LoginResponse](t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Jane Doe", resp.User.Name)
	assert.Equal(t, types.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := tokenCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, resp.Token, cookie.Value)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "Jane", "jane@example.com", "correct-horse")

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Other Jane", "email": "jane@example.com", "password": "battery-staple",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@example.com", "password": "long-enough"}},
		{"bad email", map[string]string{"name": "A", "email": "not-an-email", "password": "long-enough"}},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[types.ErrorResponse](t, rec).Message, "validation error")
		})
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", nil)
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	registered := register(t, env, "Jane", "jane@example.com", "correct-horse")

	t.Run("success", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "JANE@example.com", "password": "correct-horse",
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[types.LoginResponse](t, rec)
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotNil(t, tokenCookie(rec))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "jane@example.com", "password": "wrong-password",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, tokenCookie(rec))
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "nobody@example.com", "password": "correct-horse",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	registered := register(t, env, "Jane", "jane@example.com", "correct-horse")

	t.Run("bearer", func(t *testing.T) {
		req := jsonRequest(t, http.MethodGet, "/api/v1/auth/current-user", nil)
		req.Header.Set("Authorization", "Bearer "+registered.Token)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[types.CurrentUserResponse](t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "jane@example.com", resp.User.Email)
	})

	t.Run("cookie", func(t *testing.T) {
		req := jsonRequest(t, http.MethodGet, "/api/v1/auth/current-user", nil)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookieName, Value: registered.Token})
		assert.Equal(t, http.StatusOK, env.do(req).Code)
	})

	t.Run("no token", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodGet, "/api/v1/auth/current-user", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("forged token", func(t *testing.T) {
		req := jsonRequest(t, http.MethodGet, "/api/v1/auth/current-user", nil)
		req.Header.Set("Authorization", "Bearer "+registered.Token+"x")
		assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := tokenCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	registered := register(t, env, "Jane", "jane@example.com", "correct-horse")

	update := func(current, next string) int {
		req := jsonRequest(t, http.MethodPut, "/api/v1/auth/password", map[string]string{
			"current_password": current, "new_password": next,
		})
		req.Header.Set("Authorization", "Bearer "+registered.Token)
		return env.do(req).Code
	}

	assert.Equal(t, http.StatusUnauthorized, update("wrong-password", "battery-staple"))
	assert.Equal(t, http.StatusBadRequest, update("correct-horse", "short"))
	assert.Equal(t, http.StatusOK, update("correct-horse", "battery-staple"))

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "jane@example.com", "password": "battery-staple",
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
}
