package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oakmoor/homestead-ops/internal/auth"
	"github.com/oakmoor/homestead-ops/internal/db"
	"github.com/oakmoor/homestead-ops/internal/models"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAuthHandler_Login(t *testing.T) {
	authService, err := auth.NewService("handler-test-secret", 0, 0)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}

	t.Run("successful login", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))

		passwordHash, err := authService.HashPassword("password123")
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "testuser",
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         models.RoleMember,
			IsActive:     true,
		}
		mockUserCollection.On("FindUserByUsername", mock.Anything, "testuser").Return(user, nil)
		mockUserCollection.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "testuser", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.LoginResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "testuser", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "testuser",
			PasswordHash: passwordHash,
			Role:         models.RoleMember,
			IsActive:     true,
		}
		mockUserCollection.On("FindUserByUsername", mock.Anything, "testuser").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "testuser", Password: "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))
		mockUserCollection.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, errors.New("not found"))

		body, _ := json.Marshal(models.LoginRequest{Username: "ghost", Password: "whatever1"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "testuser",
			PasswordHash: passwordHash,
			Role:         models.RoleMember,
			IsActive:     false,
		}
		mockUserCollection.On("FindUserByUsername", mock.Anything, "testuser").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "testuser", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService, _ := auth.NewService("handler-test-secret", 0, 0)

	t.Run("invalid role rejected", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "newuser", Email: "new@example.com", Password: "password123", Role: "overlord",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))
		existing := &models.User{ID: primitive.NewObjectID(), Username: "newuser"}
		mockUserCollection.On("FindUserByUsername", mock.Anything, "newuser").Return(existing, nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "newuser", Email: "new@example.com", Password: "password123", Role: models.RoleMember,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	authService, _ := auth.NewService("handler-test-secret", 0, 0)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "testuser",
		Role:     models.RoleMember,
		IsActive: true,
	}

	postRefresh := func(handler *AuthHandler, token string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"refresh_token": token})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Refresh(w, req)
		return w
	}

	t.Run("valid refresh token issues new pair", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))
		mockUserCollection.On("FindUserByID", mock.Anything, user.ID.Hex()).Return(user, nil)

		refreshToken, err := authService.GenerateRefreshToken(user)
		assert.NoError(t, err)

		w := postRefresh(handler, refreshToken)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.LoginResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)

		// The issued access token actually authorizes requests.
		_, err = authService.ValidateToken(resp.Token)
		assert.NoError(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))

		accessToken, err := authService.GenerateAccessToken(user)
		assert.NoError(t, err)

		w := postRefresh(handler, accessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account cannot refresh", func(t *testing.T) {
		inactive := &models.User{
			ID:       primitive.NewObjectID(),
			Username: "retired",
			Role:     models.RoleMember,
			IsActive: false,
		}
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))
		mockUserCollection.On("FindUserByID", mock.Anything, inactive.ID.Hex()).Return(inactive, nil)

		refreshToken, err := authService.GenerateRefreshToken(inactive)
		assert.NoError(t, err)

		w := postRefresh(handler, refreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		mockUserCollection := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUserCollection))

		w := postRefresh(handler, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
