package linesight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func loginHandler(t *testing.T, wantUser, wantPass, token string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if creds.Username != wantUser || creds.Password != wantPass {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"user":  map[string]string{"id": "u1", "name": "Alem T.", "role": "supervisor"},
		})
	}
}

func TestLoginStoresSessionAndArmsMonitor(t *testing.T) {
	client, _, fake, nav, _ := newSessionTestClient(t, loginHandler(t, "alem", "s3cret", "tok-login"))

	result, err := client.Login(context.Background(), "alem", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token != "tok-login" {
		t.Fatalf("result token = %q", result.Token)
	}
	if result.User == nil || result.User.ID != "u1" {
		t.Fatalf("result user = %+v", result.User)
	}

	tok, ok := client.store.Token()
	if !ok || tok != "tok-login" {
		t.Fatalf("stored token = %q ok=%v", tok, ok)
	}
	user, ok := client.store.User()
	if !ok || user.Name != "Alem T." {
		t.Fatalf("stored user = %+v ok=%v", user, ok)
	}
	if got := nav.homeCalls(); got != 1 {
		t.Fatalf("NavigateHome called %d times", got)
	}

	// The login armed the idle timeout for a full window.
	armed, _, deadline := client.monitor.Snapshot()
	if !armed {
		t.Fatal("monitor not armed after login")
	}
	if want := fake.Now().Add(10 * time.Minute); !deadline.Equal(want) {
		t.Fatalf("idle deadline = %v, want %v", deadline, want)
	}
	if got := client.metrics.Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("login success counter = %d", got)
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	client, _, _, nav, _ := newSessionTestClient(t, loginHandler(t, "alem", "s3cret", "tok"))

	_, err := client.Login(context.Background(), "alem", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, ok := client.store.Token(); ok {
		t.Fatal("rejected login stored a token")
	}
	// A rejected login is not a session expiry: no forced-logout navigation.
	if got := nav.loginCalls(); got != 0 {
		t.Fatalf("rejected login navigated to login view %d times", got)
	}
	if got := client.metrics.Value(MetricLoginFailure); got != 1 {
		t.Fatalf("login failure counter = %d", got)
	}
}

func TestLoginEmptyInputsShortCircuit(t *testing.T) {
	client, _, _, _, counter := newSessionTestClient(t, http.NotFoundHandler())

	if _, err := client.Login(context.Background(), "", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := client.Login(context.Background(), "alem", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty password: %v", err)
	}
	if got := counter.count(); got != 0 {
		t.Fatalf("empty credentials reached the network %d times", got)
	}
}

func TestLoginMalformedReply(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]string{"id": "u1"}})
	})
	client, _, _, _, _ := newSessionTestClient(t, handler)

	_, err := client.Login(context.Background(), "alem", "s3cret")
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Fatalf("expected ErrUnexpectedResponse for a tokenless reply, got %v", err)
	}
	if _, ok := client.store.Token(); ok {
		t.Fatal("malformed reply stored a session")
	}
}

func TestLogoutRevokesThenClears(t *testing.T) {
	var revokes atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout" && r.Method == http.MethodPost {
			revokes.Add(1)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	})

	client, _, _, nav, _ := newSessionTestClient(t, handler)
	seedSession(t, client, "tok-123")

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if got := revokes.Load(); got != 1 {
		t.Fatalf("revoke endpoint called %d times", got)
	}
	if _, ok := client.store.Token(); ok {
		t.Fatal("token survived logout")
	}
	if got := nav.loginCalls(); got != 1 {
		t.Fatalf("logout navigated %d times", got)
	}
	if got := nav.lastReason(); got != LogoutReasonUser {
		t.Fatalf("logout reason = %q", got)
	}

	// Logging out again is a no-op: no second revoke, no second navigation.
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("repeat logout failed: %v", err)
	}
	if got := revokes.Load(); got != 1 {
		t.Fatalf("repeat logout revoked again (%d calls)", got)
	}
	if got := nav.loginCalls(); got != 1 {
		t.Fatalf("repeat logout navigated again (%d calls)", got)
	}
}

func TestLogoutProceedsWhenRevokeFails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "revoke unavailable", http.StatusServiceUnavailable)
	})

	client, _, _, nav, _ := newSessionTestClient(t, handler)
	seedSession(t, client, "tok-123")

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("logout returned error despite best-effort revoke: %v", err)
	}
	if _, ok := client.store.Token(); ok {
		t.Fatal("local cleanup skipped after failed revoke")
	}
	if got := nav.loginCalls(); got != 1 {
		t.Fatalf("logout navigated %d times", got)
	}
}

func TestInactivityExpiryRevokesAndLogsOut(t *testing.T) {
	var revokes atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout" {
			revokes.Add(1)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	})

	client, _, fake, nav, _ := newSessionTestClient(t, handler)
	seedSession(t, client, "tok-123")

	fake.Advance(10 * time.Minute)

	if got := revokes.Load(); got != 1 {
		t.Fatalf("expiry revoked the server session %d times", got)
	}
	if _, ok := client.store.Token(); ok {
		t.Fatal("token survived inactivity expiry")
	}
	if got := nav.loginCalls(); got != 1 {
		t.Fatalf("expiry navigated %d times", got)
	}
	if got := nav.lastReason(); got != LogoutReasonInactivity {
		t.Fatalf("logout reason = %q", got)
	}
	if got := client.metrics.Value(MetricSessionTimeout); got != 1 {
		t.Fatalf("session timeout counter = %d", got)
	}
}

func TestRecordActivityExtendsSession(t *testing.T) {
	client, _, fake, nav, _ := newSessionTestClient(t, http.NotFoundHandler())
	seedSession(t, client, "tok-123")

	for i := 0; i < 100; i++ {
		client.RecordActivity()
	}

	fake.Advance(9 * time.Minute)
	client.RecordActivity()
	fake.Advance(9 * time.Minute)
	if got := nav.loginCalls(); got != 0 {
		t.Fatalf("session expired %d times despite activity", got)
	}
}

func TestSessionInfoSnapshot(t *testing.T) {
	client, _, fake, _, _ := newSessionTestClient(t, http.NotFoundHandler())

	if info := client.SessionInfo(); info.LoggedIn {
		t.Fatal("empty client reports a live session")
	}

	seedSession(t, client, "opaque-token")
	fake.Advance(4 * time.Minute)

	info := client.SessionInfo()
	if !info.LoggedIn {
		t.Fatal("seeded client reports no session")
	}
	if info.User == nil || info.User.ID != "u1" {
		t.Fatalf("session user = %+v", info.User)
	}
	if info.TimeUntilIdle != 6*time.Minute {
		t.Fatalf("TimeUntilIdle = %v, want 6m", info.TimeUntilIdle)
	}
	if info.TokenExpiryOK {
		t.Fatal("opaque token reported a parseable expiry")
	}
}
