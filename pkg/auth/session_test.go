package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fitpulse/fitpulse/pkg/adapters/memory"
	"github.com/fitpulse/fitpulse/pkg/auth"
	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/fitpulse/fitpulse/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend  *stubBackend
	kv       *memory.Store
	notifier *MockNotifier
	session  *auth.Session
	baseURL  string
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()
	backend, srv := newStubBackend(t)
	client, err := auth.NewClient(srv.URL)
	require.NoError(t, err)

	kv := memory.NewStore()
	store := session.NewStore(kv, session.DefaultKey)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, store.Wait(ctx))

	notifier := newMockNotifier()
	opts = append([]auth.Option{auth.WithNotifier(notifier)}, opts...)

	return &fixture{
		backend:  backend,
		kv:       kv,
		notifier: notifier,
		session:  auth.NewSession(store, client, opts...),
		baseURL:  srv.URL,
	}
}

func TestSession_EmptyStart(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.session.IsLoading())
	assert.Nil(t, f.session.CurrentUser())
}

func TestSession_SignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "secret"))

	assert.Equal(t, &domain.User{Token: "abc", ID: 7}, f.session.CurrentUser())

	raw, err := f.kv.Get(ctx, session.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"token":"abc","id":7}`, raw)
	f.notifier.AssertNotCalled(t, "Notify")
}

func TestSession_SignInRejected(t *testing.T) {
	f := newFixture(t)
	f.backend.loginStatus = http.StatusUnauthorized
	ctx := context.Background()

	err := f.session.SignIn(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	assert.Nil(t, f.session.CurrentUser())
	_, err = f.kv.Get(ctx, session.DefaultKey)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	assert.Equal(t, []ports.NotificationKind{ports.NotifyFailure}, f.notifier.kinds())
}

func TestSession_SignInRejectedKeepsExistingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "secret"))

	f.backend.loginStatus = http.StatusUnauthorized
	f.backend.loginBody = nil
	assert.Error(t, f.session.SignIn(ctx, "c@d.com", "wrong"))

	assert.Equal(t, &domain.User{Token: "abc", ID: 7}, f.session.CurrentUser())
}

func TestSession_SignInNoRetry(t *testing.T) {
	f := newFixture(t)
	f.backend.loginStatus = http.StatusInternalServerError

	assert.Error(t, f.session.SignIn(context.Background(), "a@b.com", "secret"))
	assert.Equal(t, 1, f.backend.loginCount())
}

func TestSession_SignInAsync(t *testing.T) {
	f := newFixture(t)

	select {
	case err := <-f.session.SignInAsync(context.Background(), "a@b.com", "secret"):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sign in did not complete")
	}
	assert.NotNil(t, f.session.CurrentUser())
}

func TestSession_SignOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "secret"))

	require.NoError(t, f.session.SignOut(ctx))

	assert.Nil(t, f.session.CurrentUser())
	_, err := f.kv.Get(ctx, session.DefaultKey)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestSession_SignOutWhenSignedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.SignOut(ctx))
	require.NoError(t, f.session.SignOut(ctx))

	snap := f.session.Store().Snapshot()
	assert.Equal(t, domain.Ready, snap.State)
	assert.Nil(t, snap.Value)
	f.notifier.AssertNotCalled(t, "Notify")
}

func TestSession_RestoredOnLaunch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "secret"))

	// A new process reads the same durable storage.
	client, err := auth.NewClient(f.baseURL)
	require.NoError(t, err)
	store := session.NewStore(f.kv, session.DefaultKey)
	relaunched := auth.NewSession(store, client)

	assert.True(t, relaunched.IsLoading())
	require.NoError(t, store.Wait(ctx))
	assert.Equal(t, &domain.User{Token: "abc", ID: 7}, relaunched.CurrentUser())
}

func TestSession_MalformedStoredValue(t *testing.T) {
	kv := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, session.DefaultKey, "garbage"))

	client, err := auth.NewClient("http://127.0.0.1:3000")
	require.NoError(t, err)
	store := session.NewStore(kv, session.DefaultKey)
	require.NoError(t, store.Wait(ctx))

	assert.Nil(t, auth.NewSession(store, client).CurrentUser())
}

// readOnlyStore accepts reads and rejects every write.
type readOnlyStore struct {
	*memory.Store
}

func (readOnlyStore) Set(context.Context, string, string) error {
	return errors.New("read-only file system")
}

func TestSession_SignInStorageFailure(t *testing.T) {
	backend, srv := newStubBackend(t)
	client, err := auth.NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	store := session.NewStore(readOnlyStore{memory.NewStore()}, session.DefaultKey)
	require.NoError(t, store.Wait(ctx))
	notifier := newMockNotifier()
	sess := auth.NewSession(store, client, auth.WithNotifier(notifier))

	err = sess.SignIn(ctx, "a@b.com", "secret")
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrAuthFailed)
	assert.Nil(t, sess.CurrentUser())
	assert.Equal(t, 1, backend.loginCount())
	assert.Equal(t, []ports.NotificationKind{ports.NotifyFailure}, notifier.kinds())
}

func TestSession_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.Register(ctx, "a@b.com", "secret"))
	assert.Nil(t, f.session.CurrentUser(), "registering does not sign in")

	f.backend.registerStatus = http.StatusBadRequest
	assert.Error(t, f.session.Register(ctx, "a@b.com", "secret"))

	assert.Equal(t, []ports.NotificationKind{ports.NotifySuccess, ports.NotifyFailure}, f.notifier.kinds())
}

func TestSession_HTTPClientSendsBearer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.HTTPClient(ctx)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "secret"))
	hc, err := f.session.HTTPClient(ctx)
	require.NoError(t, err)

	resp, err := hc.Get(f.baseURL + "/users/7")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer abc", f.backend.lastAuthz)
}

func TestSession_CancelledSignInIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, f.session.SignIn(ctx, "a@b.com", "secret"))
	f.notifier.AssertNotCalled(t, "Notify")
}

func TestSession_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, auth.WithMetrics(observability.NewMetrics(reg)))
	ctx := context.Background()

	require.NoError(t, f.session.SignIn(ctx, "a@b.com", "secret"))
	f.backend.loginStatus = http.StatusUnauthorized
	_ = f.session.SignIn(ctx, "a@b.com", "wrong")

	count, err := testutil.GatherAndCount(reg, "fitpulse_sign_ins_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one ok series and one error series")
}
