package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/shared"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(slog.New(slog.DiscardHandler), auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func authUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Email:        "manager@test.local",
		Name:         "Manager",
		Role:         auth.RoleManager,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
}

func doLogin(t *testing.T, handler *auth.Handler, sessions *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	r := chi.NewRouter()
	handler.MountRoutes(r)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	user := authUser(t, "correct-password")
	handler, sessions := newAuthHandler(t, &stubRepo{user: user})

	res, sess := doLogin(t, handler, sessions,
		`{"email":"manager@test.local","password":"correct-password"}`)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, int64(1), sess.UserID())

	var out struct {
		UserID    int64  `json:"user_id"`
		Role      string `json:"role"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	require.Equal(t, int64(1), out.UserID)
	require.Equal(t, "manager", out.Role)
	require.NotEmpty(t, out.CSRFToken)
	require.Equal(t, sess.Get(shared.CSRFSessionKey), out.CSRFToken)
}

func TestLoginWrongPassword(t *testing.T) {
	user := authUser(t, "correct-password")
	handler, sessions := newAuthHandler(t, &stubRepo{user: user})

	res, sess := doLogin(t, handler, sessions,
		`{"email":"manager@test.local","password":"wrong-password"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Zero(t, sess.UserID())
}

func TestLoginInactiveUser(t *testing.T) {
	user := authUser(t, "correct-password")
	user.IsActive = false
	handler, sessions := newAuthHandler(t, &stubRepo{user: user})

	res, _ := doLogin(t, handler, sessions,
		`{"email":"manager@test.local","password":"correct-password"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginValidation(t *testing.T) {
	handler, sessions := newAuthHandler(t, &stubRepo{})

	res, _ := doLogin(t, handler, sessions, `{"email":"not-an-email","password":"x"}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAuthenticateService(t *testing.T) {
	user := authUser(t, "correct-password")
	svc := auth.NewService(&stubRepo{user: user})

	got, err := svc.Authenticate(context.Background(), "manager@test.local", "correct-password")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "nobody@test.local", "correct-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
