package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-tracking/internal/auth"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
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

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	return logrus.NewEntry(logger)
}

func newAuthHandler(t *testing.T) (*AuthHandler, *MockUserCollection, *auth.Service) {
	t.Helper()
	svc, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)
	users := new(MockUserCollection)
	return NewAuthHandler(svc, users, testLogger()), users, svc
}

func postJSON(path string, v interface{}) *http.Request {
	body, _ := json.Marshal(v)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	handler, users, svc := newAuthHandler(t)
	hash, err := svc.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Username:     "analyst",
		PasswordHash: hash,
		Role:         models.RoleDataAnalyst,
		IsActive:     true,
	}
	users.On("FindUserByUsername", mock.Anything, "analyst").Return(user, nil)
	users.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, db.ErrNotFound)
	users.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

	t.Run("successful login", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "analyst", Password: "password123"}))

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "analyst", resp.User.Username)
		assert.NotContains(t, w.Body.String(), hash, "password hash never leaves the server")

		claims, err := svc.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleDataAnalyst, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "analyst", Password: "nope"}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "ghost", Password: "password123"}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "analyst"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAuthHandler_Login_Inactive(t *testing.T) {
	handler, users, svc := newAuthHandler(t)
	hash, _ := svc.HashPassword("password123")
	users.On("FindUserByUsername", mock.Anything, "old").Return(&models.User{Username: "old", PasswordHash: hash}, nil)

	w := httptest.NewRecorder()
	handler.Login(w, postJSON("/api/auth/login", models.LoginRequest{Username: "old", Password: "password123"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "inactive")
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates analyst", func(t *testing.T) {
		handler, users, _ := newAuthHandler(t)
		users.On("FindUserByUsername", mock.Anything, "dispatcher").Return(nil, db.ErrNotFound)
		users.On("FindUserByEmail", mock.Anything, "dispatch@fleet.bg").Return(nil, db.ErrNotFound)
		users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Username == "dispatcher" && u.Role == models.RoleDataAnalyst && u.PasswordHash != "password123"
		})).Return(nil)

		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", models.RegisterRequest{
			Username: "dispatcher",
			Email:    "dispatch@fleet.bg",
			Password: "password123",
		}))

		assert.Equal(t, http.StatusCreated, w.Code)
		users.AssertExpectations(t)
	})

	t.Run("anonymous caller cannot pick an elevated role", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleAdmin, models.RoleFleetManager, models.RoleLogisticsApp} {
			handler, users, _ := newAuthHandler(t)

			w := httptest.NewRecorder()
			handler.Register(w, postJSON("/api/auth/register", models.RegisterRequest{
				Username: "mallory",
				Email:    "mallory@fleet.bg",
				Password: "password123",
				Role:     role,
			}))

			assert.Equal(t, http.StatusForbidden, w.Code, role)
			assert.NotContains(t, w.Body.String(), `"token"`, role)
			users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
		}
	})

	t.Run("admin assigns an elevated role", func(t *testing.T) {
		handler, users, _ := newAuthHandler(t)
		users.On("FindUserByUsername", mock.Anything, "dispatcher").Return(nil, db.ErrNotFound)
		users.On("FindUserByEmail", mock.Anything, "dispatch@fleet.bg").Return(nil, db.ErrNotFound)
		users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleFleetManager
		})).Return(nil)

		req := postJSON("/api/auth/register", models.RegisterRequest{
			Username: "dispatcher",
			Email:    "dispatch@fleet.bg",
			Password: "password123",
			Role:     models.RoleFleetManager,
		})
		ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.Claims{Username: "root", Role: models.RoleAdmin})
		w := httptest.NewRecorder()
		handler.Register(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusCreated, w.Code)
		users.AssertExpectations(t)
	})

	t.Run("username taken", func(t *testing.T) {
		handler, users, _ := newAuthHandler(t)
		users.On("FindUserByUsername", mock.Anything, "dispatcher").Return(&models.User{Username: "dispatcher"}, nil)

		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", models.RegisterRequest{
			Username: "dispatcher", Email: "dispatch@fleet.bg", Password: "password123",
		}))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("lookup failure", func(t *testing.T) {
		handler, users, _ := newAuthHandler(t)
		users.On("FindUserByUsername", mock.Anything, "dispatcher").Return(nil, errors.New("connection reset"))

		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", models.RegisterRequest{
			Username: "dispatcher", Email: "dispatch@fleet.bg", Password: "password123",
		}))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid input", func(t *testing.T) {
		handler, _, _ := newAuthHandler(t)
		w := httptest.NewRecorder()
		handler.Register(w, postJSON("/api/auth/register", models.RegisterRequest{
			Username: "dispatcher", Email: "not-an-email", Password: "password123",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	handler, users, _ := newAuthHandler(t)
	id := primitive.NewObjectID()
	users.On("FindUserByID", mock.Anything, id.Hex()).Return(&models.User{ID: id, Username: "analyst"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.Claims{UserID: id.Hex(), Username: "analyst"})
	w := httptest.NewRecorder()
	handler.GetProfile(w, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "analyst", user.Username)

	w = httptest.NewRecorder()
	handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
