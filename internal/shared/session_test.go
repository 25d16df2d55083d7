package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ezzystore/ezzystore/internal/shared"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	sess.SetUserID(42)
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sess.ID, cookies[0].Value)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, int64(42), loaded.UserID())
	require.Equal(t, "dark", loaded.Get("theme"))
}

func TestSessionDestroy(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUserID(7)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))

	sm.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: "test_session", Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Zero(t, loaded.UserID())
}

func TestSessionFlashes(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "saved"})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: "test_session", Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	flashes := loaded.PopFlashes()
	require.Len(t, flashes, 1)
	require.Equal(t, "saved", flashes[0].Message)
	require.Empty(t, loaded.PopFlashes())
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm := newSessionManager(t)
	csrf := shared.NewCSRFManager("secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	token, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	require.Equal(t, token, again)

	require.NoError(t, csrf.VerifyToken(sess, token))
	require.ErrorIs(t, csrf.VerifyToken(sess, "forged"), shared.ErrCSRFTokenMismatch)
	require.ErrorIs(t, csrf.VerifyToken(sess, ""), shared.ErrCSRFTokenMissing)
}
