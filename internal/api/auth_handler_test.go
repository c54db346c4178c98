package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/domain"
	"github.com/rosterly/roster-api/internal/mocks"
	"github.com/rosterly/roster-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery-staple"

func postJSON(t *testing.T, handlerFn http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFn(rec, r)
	return rec
}

func newAuthHandlerForTest(userStore *mocks.MockUserStore, verifierErr error) *AuthHandler {
	jwtService := &mocks.MockJWTService{
		Token:        "access-token",
		RefreshToken: "refresh-token",
	}
	return NewAuthHandler(userStore, jwtService, &mocks.MockPasswordVerifier{Err: verifierErr})
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		h := newAuthHandlerForTest(userStore, nil)

		rec := postJSON(t, h.Register, "/api/auth/register",
			RegisterRequest{Email: "new@example.com", Password: testPassword})

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.NotEqual(t, uuid.Nil, resp.UserID)

		stored, err := userStore.GetByEmail(context.Background(), "new@example.com")
		require.NoError(t, err)
		assert.Empty(t, stored.Password, "plaintext must be cleared before storage")
		assert.NotEmpty(t, stored.HashedPassword)
		assert.NotEqual(t, testPassword, stored.HashedPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		h := newAuthHandlerForTest(userStore, nil)

		first := postJSON(t, h.Register, "/api/auth/register",
			RegisterRequest{Email: "dup@example.com", Password: testPassword})
		require.Equal(t, http.StatusCreated, first.Code)

		second := postJSON(t, h.Register, "/api/auth/register",
			RegisterRequest{Email: "dup@example.com", Password: testPassword})
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), "Email already exists")
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			req  RegisterRequest
		}{
			{name: "bad email", req: RegisterRequest{Email: "not-an-email", Password: testPassword}},
			{name: "short password", req: RegisterRequest{Email: "a@example.com", Password: "short"}},
			{name: "empty", req: RegisterRequest{}},
		}
		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				h := newAuthHandlerForTest(mocks.NewMockUserStore(), nil)
				rec := postJSON(t, h.Register, "/api/auth/register", tc.req)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	seedUser := func(t *testing.T) (*mocks.MockUserStore, *domain.User) {
		t.Helper()
		userStore := mocks.NewMockUserStore()
		user := &domain.User{
			ID:             uuid.New(),
			Email:          "user@example.com",
			HashedPassword: "$2a$10$fakefakefakefakefakefake",
		}
		userStore.Users[user.Email] = user
		return userStore, user
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		userStore, user := seedUser(t)
		h := newAuthHandlerForTest(userStore, nil)

		rec := postJSON(t, h.Login, "/api/auth/login",
			LoginRequest{Email: user.Email, Password: testPassword})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		userStore, user := seedUser(t)
		h := newAuthHandlerForTest(userStore, errors.New("mismatch"))

		rec := postJSON(t, h.Login, "/api/auth/login",
			LoginRequest{Email: user.Email, Password: "wrong-password-entirely"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandlerForTest(mocks.NewMockUserStore(), nil)
		rec := postJSON(t, h.Login, "/api/auth/login",
			LoginRequest{Email: "nobody@example.com", Password: testPassword})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials",
			"unknown email and wrong password must be indistinguishable")
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		userStore := mocks.NewMockUserStore()
		user := &domain.User{ID: uuid.New(), Email: "user@example.com", HashedPassword: "x"}
		userStore.Users[user.Email] = user

		jwtService := &mocks.MockJWTService{
			Token:        "new-access",
			RefreshToken: "new-refresh",
			Claims:       &auth.Claims{UserID: user.ID, TokenType: "refresh"},
		}
		h := NewAuthHandler(userStore, jwtService, &mocks.MockPasswordVerifier{})

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh",
			RefreshTokenRequest{RefreshToken: "old-refresh"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "new-access", resp.AccessToken)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{ValidateErr: auth.ErrInvalidRefreshToken}
		h := NewAuthHandler(mocks.NewMockUserStore(), jwtService, &mocks.MockPasswordVerifier{})

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh",
			RefreshTokenRequest{RefreshToken: "bad"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{ValidateErr: auth.ErrExpiredRefreshToken}
		h := NewAuthHandler(mocks.NewMockUserStore(), jwtService, &mocks.MockPasswordVerifier{})

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh",
			RefreshTokenRequest{RefreshToken: "stale"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{
			Claims: &auth.Claims{UserID: uuid.New(), TokenType: "refresh"},
		}
		h := NewAuthHandler(mocks.NewMockUserStore(), jwtService, &mocks.MockPasswordVerifier{})

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh",
			RefreshTokenRequest{RefreshToken: "orphaned"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
