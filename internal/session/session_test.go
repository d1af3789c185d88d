package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zupos_panel/internal/cache"
	"zupos_panel/internal/webpanel"
)

func newManager(t *testing.T) (*Manager, cache.Cache) {
	t.Helper()
	store := cache.NewMemoryCache(cache.DefaultConfig())
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

var testUser = User{ID: "user_kasiyer_001", Username: "kasiyer", BranchNo: "001", BranchName: "Şube 001", Role: "user"}

func TestSessionRoundTrip(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	cookies := []webpanel.Cookie{{Name: "sid", Value: "1"}}

	require.NoError(t, m.SetSession(ctx, "s1", SessionMarker, testUser, cookies))

	token, err := m.GetToken(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, SessionMarker, token)

	st, err := m.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, testUser, st.User)
	assert.Equal(t, cookies, st.Cookies)
	assert.Equal(t, webpanel.Session{Token: SessionMarker, Cookies: cookies}, st.Backend())
}

func TestLoadMissing(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = m.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	token, err := m.GetToken(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLoadCorruptUserClearsSession(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()
	require.NoError(t, m.SetSession(ctx, "s1", SessionMarker, testUser, nil))
	require.NoError(t, store.Set(ctx, "s1:user", []byte("{broken"), time.Hour))

	_, err := m.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	exists, err := store.Exists(ctx, "s1:token")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = store.Exists(ctx, "s1:user")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClearSession(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	require.NoError(t, m.SetSession(ctx, "s1", SessionMarker, testUser, nil))
	require.NoError(t, m.ClearSession(ctx, "s1"))

	_, err := m.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	st := &State{ID: "s1"}
	got, ok := FromContext(WithState(context.Background(), st))
	require.True(t, ok)
	assert.Same(t, st, got)
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
