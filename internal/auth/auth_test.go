package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zupos_panel/internal/cache"
	"zupos_panel/internal/session"
	"zupos_panel/internal/webpanel"
)

type fakeBackend struct {
	mu        sync.Mutex
	signInErr error
	valid     bool
	signIns   int
	logouts   int
}

func (f *fakeBackend) SignIn(context.Context, webpanel.Credentials) ([]webpanel.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return []webpanel.Cookie{{Name: "sid", Value: "1"}}, nil
}

func (f *fakeBackend) ValidateSession(context.Context, webpanel.Session) (bool, error) {
	return f.valid, nil
}

func (f *fakeBackend) Logout(context.Context, webpanel.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
}

func (f *fakeBackend) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signIns, f.logouts
}

type fakeMenus struct{ dropped []string }

func (m *fakeMenus) Drop(id string) bool {
	m.dropped = append(m.dropped, id)
	return true
}

func newService(t *testing.T, backend *fakeBackend) (*Service, *session.Manager, *fakeMenus) {
	t.Helper()
	store := cache.NewMemoryCache(cache.DefaultConfig())
	t.Cleanup(func() { _ = store.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(store, time.Hour, logger)
	menus := &fakeMenus{}
	return NewService(backend, sessions, menus, logger), sessions, menus
}

func TestValidateForm(t *testing.T) {
	assert.Nil(t, ValidateForm(Form{Username: "kasiyer", Password: "123456", BranchNo: "001"}))

	errs := ValidateForm(Form{Username: "ab", Password: "12345", BranchNo: "01"})
	require.Len(t, errs, 3)
	assert.Contains(t, errs["username"].Error(), "at least 3 characters")
	assert.Contains(t, errs["password"].Error(), "at least 6 characters")
	assert.Equal(t, "Kullanıcı adı en az 3 karakter olmalıdır.", errs["username"].Message)
}

func TestValidateFormCountsRunes(t *testing.T) {
	assert.Nil(t, ValidateForm(Form{Username: "çğü", Password: "şşşşşş", BranchNo: "ğğğ"}))
}

func TestLoginShortUsernameMakesNoCall(t *testing.T) {
	backend := &fakeBackend{valid: true}
	svc, _, _ := newService(t, backend)

	_, err := svc.Login(context.Background(), "s1", Form{Username: "ab", Password: "123456", BranchNo: "001"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["username"].Error(), "at least 3 characters")
	assert.Contains(t, verr.Error(), "username must be at least 3 characters")
	signIns, _ := backend.counts()
	assert.Zero(t, signIns)
}

func TestLoginFailedValidationStoresNothing(t *testing.T) {
	backend := &fakeBackend{valid: false}
	svc, sessions, _ := newService(t, backend)

	_, err := svc.Login(context.Background(), "s1", Form{Username: "kasiyer", Password: "123456", BranchNo: "001"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := sessions.GetToken(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLoginSignInErrorIsGeneric(t *testing.T) {
	backend := &fakeBackend{signInErr: errors.New("connection refused")}
	svc, _, _ := newService(t, backend)

	_, err := svc.Login(context.Background(), "s1", Form{Username: "kasiyer", Password: "123456", BranchNo: "001"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAndLogout(t *testing.T) {
	backend := &fakeBackend{valid: true}
	svc, sessions, menus := newService(t, backend)
	ctx := context.Background()

	user, err := svc.Login(ctx, "s1", Form{Username: "kasiyer", Password: "123456", BranchNo: "002"})
	require.NoError(t, err)
	assert.Equal(t, session.User{ID: "user_kasiyer_002", Username: "kasiyer", BranchNo: "002", BranchName: "Şube 002", Role: "user"}, *user)

	st, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.SessionMarker, st.Token)
	assert.Equal(t, []webpanel.Cookie{{Name: "sid", Value: "1"}}, st.Cookies)

	svc.Logout(ctx, st)
	_, err = sessions.Load(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Equal(t, []string{"s1"}, menus.dropped)
	assert.Eventually(t, func() bool {
		_, logouts := backend.counts()
		return logouts == 1
	}, time.Second, 5*time.Millisecond)
}
