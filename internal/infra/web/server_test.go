//go:build !integration

package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-admin-jwt-secret-please-change"

func TestAuthMiddleware(t *testing.T) {
	dummyHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	auth := NewAuthManager(testSecret, false, time.Minute)
	protected := NewServer(nil, nil, nil, "test-admin-key", auth, nil, newTestLogger()).authMiddleware(dummyHandler)

	mint := func(t *testing.T) string {
		t.Helper()
		token, _, err := auth.Mint(httptest.NewRecorder(), "admin")
		if err != nil || token == "" {
			t.Fatalf("failed to mint test token: %v", err)
		}
		return token
	}

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "no credentials -> 401", want: http.StatusUnauthorized},
		{name: "no scheme -> 401", header: "whatever-token", want: http.StatusUnauthorized},
		{name: "wrong scheme -> 401", header: "Basic aaa.bbb.ccc", want: http.StatusUnauthorized},
		{name: "invalid jwt -> 401", header: "Bearer invalid.jwt.token", want: http.StatusUnauthorized},
		{name: "valid bearer -> 200", header: "Bearer " + mint(t), want: http.StatusOK},
		{name: "valid cookie -> 200", cookie: mint(t), want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: sessionCookie, Value: tc.cookie})
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}

	t.Run("token signed with another secret -> 401", func(t *testing.T) {
		other := NewAuthManager("another-secret", false, time.Minute)
		token, _, _ := other.Mint(httptest.NewRecorder(), "admin")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("expired token -> 401", func(t *testing.T) {
		old := NewAuthManager(testSecret, false, time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, _ := old.Mint(httptest.NewRecorder(), "admin")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("none algorithm -> 401", func(t *testing.T) {
		claims := AdminClaims{Role: "admin"}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("no auth manager configured -> 401", func(t *testing.T) {
		noAuth := NewServer(nil, nil, nil, "test-admin-key", nil, nil, newTestLogger()).authMiddleware(dummyHandler)
		rr := httptest.NewRecorder()
		noAuth.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestAdminLoginLogoutFlow(t *testing.T) {
	auth := NewAuthManager(testSecret, false, time.Minute)
	stats := &mockStatsUC{UserStatsFunc: statsOK}
	h := NewServer(stats, nil, nil, "test-admin-key", auth, nil, newTestLogger()).Routes()

	var session *http.Cookie

	t.Run("login with wrong key -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(`{"key":"wrong"}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("login with malformed body -> 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(`{`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("login with correct key -> 200 + token + cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(`{"key":"test-admin-key"}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var body loginResponse
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil || body.Token == "" {
			t.Fatalf("expected token in body: %v", err)
		}
		for _, c := range rr.Result().Cookies() {
			if c.Name == sessionCookie {
				session = c
			}
		}
		if session == nil || session.Value == "" || !session.HttpOnly {
			t.Fatal("expected HttpOnly admin_session cookie")
		}
	})

	t.Run("protected route with cookie -> 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.AddCookie(session)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if rr.Header().Get(traceHeader) == "" {
			t.Fatal("expected trace id header")
		}
	})

	t.Run("logout -> 204 and cookie cleared", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
		cleared := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == sessionCookie && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected cookie to be cleared")
		}
	})

	t.Run("without cookie -> 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestLoginWithoutConfiguredKey(t *testing.T) {
	h := NewServer(nil, nil, nil, "", NewAuthManager(testSecret, false, time.Minute), nil, newTestLogger()).Routes()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(`{"key":""}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	h := NewServer(nil, nil, nil, "k", nil, nil, newTestLogger()).Routes()
	for _, path := range []string{"/health", "/metrics"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}
