package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/chefsite/internal/model"
)

func newTestRouter(deps *RouterDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.AuthService == nil {
		deps.AuthService = &mockAuthService{}
	}
	if deps.SessionResolver == nil {
		deps.SessionResolver = &mockSessionResolver{}
	}
	if deps.ContactService == nil {
		deps.ContactService = &mockContactService{}
	}
	if deps.OrderService == nil {
		deps.OrderService = &mockOrderService{}
	}
	if deps.Static == nil {
		deps.Static = testPages()
	}
	deps.AuthConfig.SessionMaxAge = 86400
	return NewRouter(deps)
}

func TestNewRouter_Routes(t *testing.T) {
	router := newTestRouter(&RouterDeps{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/register", http.StatusOK},
		{http.MethodGet, "/login", http.StatusOK},
		{http.MethodPost, "/register", http.StatusFound},
		{http.MethodPost, "/login", http.StatusFound},
		{http.MethodGet, "/getuserinfo", http.StatusUnauthorized},
		{http.MethodGet, "/logout", http.StatusFound},
		{http.MethodPost, "/submit-form", http.StatusOK},
		{http.MethodPost, "/order", http.StatusUnauthorized},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/login.html", http.StatusOK},
		{http.MethodGet, "/missing.css", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.method == http.MethodPost {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestNewRouter_StaticIndex(t *testing.T) {
	router := newTestRouter(&RouterDeps{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(w.Body.String(), "<h1>home</h1>") {
		t.Errorf("body = %q, want index.html", w.Body.String())
	}
}

func TestNewRouter_SessionCookie_ResolvesForGatedRoutes(t *testing.T) {
	resolver := &mockSessionResolver{sessions: map[string]*model.Session{
		"tok": {Token: "tok", IdentityID: "id-1", DisplayName: "a@x.com"},
	}}
	router := newTestRouter(&RouterDeps{
		SessionResolver: resolver,
		AuthConfig:      AuthHandlerConfig{CookieName: "chef.sid"},
	})

	req := httptest.NewRequest(http.MethodGet, "/getuserinfo", nil)
	req.AddCookie(&http.Cookie{Name: "chef.sid", Value: "tok"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"userName":"a@x.com"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestNewRouter_Health_DatabaseDown_Returns503(t *testing.T) {
	router := newTestRouter(&RouterDeps{
		HealthChecker: &mockHealthChecker{err: errors.New("connection refused")},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestNewRouter_Health_OK(t *testing.T) {
	router := newTestRouter(&RouterDeps{HealthChecker: &mockHealthChecker{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestNewRouter_MetricsRoute_MountedWhenProvided(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "chefsite_logins_total 0\n")
	})
	router := newTestRouter(&RouterDeps{MetricsHandler: metricsHandler})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(w.Body.String(), "chefsite_logins_total") {
		t.Errorf("body = %q, want metrics exposition", w.Body.String())
	}
}

func TestNewRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(&RouterDeps{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected X-Content-Type-Options: nosniff")
	}
}
