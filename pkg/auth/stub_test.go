package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// stubBackend is a stand-in for the remote fitness API.
type stubBackend struct {
	mu sync.Mutex

	loginStatus    int
	loginBody      any
	registerStatus int

	logins    []map[string]string
	headers   []http.Header
	lastAuthz string
}

func newStubBackend(t *testing.T) (*stubBackend, *httptest.Server) {
	t.Helper()
	b := &stubBackend{
		loginStatus:    http.StatusOK,
		loginBody:      map[string]any{"token": "abc", "user_id": 7},
		registerStatus: http.StatusCreated,
	}

	r := chi.NewRouter()
	r.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.logins = append(b.logins, body)
		b.headers = append(b.headers, r.Header.Clone())
		status, resp := b.loginStatus, b.loginBody
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(resp)
		} else {
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
		}
	})
	r.Post("/users/register", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status := b.registerStatus
		b.mu.Unlock()
		w.WriteHeader(status)
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lastAuthz = r.Header.Get("Authorization")
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": chi.URLParam(r, "id")}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *stubBackend) loginCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.logins)
}

// MockNotifier records notifications.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) {
	m.Called(ctx, n)
}

func newMockNotifier() *MockNotifier {
	n := &MockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return()
	return n
}

func (m *MockNotifier) kinds() []ports.NotificationKind {
	var out []ports.NotificationKind
	for _, c := range m.Calls {
		out = append(out, c.Arguments.Get(1).(ports.Notification).Kind)
	}
	return out
}
