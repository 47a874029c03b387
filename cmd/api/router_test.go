package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contactRepo "improtango-backend/internal/contact/repository"
	contactUsecase "improtango-backend/internal/contact/usecase"
	newsletterRepo "improtango-backend/internal/newsletter/repository"
	newsletterUsecase "improtango-backend/internal/newsletter/usecase"
	"improtango-backend/internal/notification"
	ratelimitDomain "improtango-backend/internal/ratelimit/domain"
	ratelimitRepo "improtango-backend/internal/ratelimit/repository"
	ratelimitUsecase "improtango-backend/internal/ratelimit/usecase"
	"improtango-backend/internal/testutil"
	"improtango-backend/pkg/config"
	"improtango-backend/pkg/database"
	"improtango-backend/pkg/mailer"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Error struct {
		Kind              string `json:"kind"`
		Message           string `json:"message"`
		Field             string `json:"field"`
		RetryAfterSeconds int    `json:"retry_after_seconds"`
	} `json:"error"`
}

func newTestServer(t *testing.T, cfg *config.Config) (*gin.Engine, *testutil.FakeSender) {
	t.Helper()
	db := testutil.NewDB(t)
	sender := testutil.NewFakeSender()
	clock := testutil.NewClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	notifier, err := notification.NewService(sender, cfg.Email)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	limiter := ratelimitUsecase.NewLimiter(
		ratelimitRepo.NewGormRateLimitRepository(db),
		ratelimitDomain.Policy{Window: cfg.RateLimit.Window, Max: cfg.RateLimit.Max},
		ratelimitUsecase.WithClock(clock.Now),
		ratelimitUsecase.WithScope(cfg.RateLimit.Scope),
	)
	tx := database.NewTransactor(db)
	nl := newsletterUsecase.NewNewsletterUsecase(newsletterRepo.NewGormSubscriberRepository(db), tx, limiter, notifier)
	ct := contactUsecase.NewContactUsecase(contactRepo.NewGormSubmissionRepository(db), tx, limiter, notifier)

	return NewHandler(cfg, nl, ct, limiter).Router(), sender
}

func testConfig() *config.Config {
	return &config.Config{
		GinMode:     gin.TestMode,
		CORSOrigins: []string{"https://improtango.fi"},
		Email: config.EmailConfig{
			Transport:    config.TransportResend,
			ResendAPIKey: "re_test",
			From:         "info@improtango.fi",
			AdminTo:      "admin@improtango.fi",
			SiteURL:      "https://improtango.fi",
			Timeout:      time.Second,
		},
		RateLimit: config.RateLimitConfig{
			Window: time.Hour,
			Max:    1,
			Scope:  config.ScopeShared,
		},
		AdminUser: "admin",
		AdminPass: "secret",
	}
}

func do(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, testConfig())
	w := do(r, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestNewsletterFlow(t *testing.T) {
	r, sender := newTestServer(t, testConfig())

	w := do(r, http.MethodPost, "/api/newsletter/subscribe", `{"email":"bob@example.com"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("subscribe: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" {
		t.Fatalf("expected id in %s", w.Body.String())
	}
	if len(sender.Messages()) != 2 {
		t.Fatalf("expected welcome and admin emails, got %d", len(sender.Messages()))
	}

	w = do(r, http.MethodPost, "/api/newsletter/subscribe", `{"email":"bob@example.com"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate subscribe: %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Kind != "already_subscribed" || body.Error.Message != "Tämä sähköpostiosoite on jo tilattu uutiskirjeelle." {
		t.Fatalf("unexpected error %+v", body.Error)
	}

	w = do(r, http.MethodGet, "/api/newsletter/subscription?email=bob@example.com", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"isSubscribed":true`) {
		t.Fatalf("check: %d %s", w.Code, w.Body.String())
	}

	sender.FailOn(notification.SubjectUnsubscribeAdmin, &mailer.ProviderError{StatusCode: 500})
	w = do(r, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"bob@example.com"}`, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("unsubscribe: %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"bob@example.com"}`, map[string]string{"Accept-Language": "en-US,en;q=0.9"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("second unsubscribe: %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Message != "This email address was not found among the newsletter subscribers." {
		t.Fatalf("expected english message, got %q", body.Error.Message)
	}
}

func TestContactFlow_RateLimited(t *testing.T) {
	r, sender := newTestServer(t, testConfig())
	payload := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello there, interested in a workshop."}`

	w := do(r, http.MethodPost, "/api/contact", payload, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("contact: %d %s", w.Code, w.Body.String())
	}
	if sender.BySubject("Yhteydenotto: Hi") == nil {
		t.Fatalf("admin email not sent")
	}

	w = do(r, http.MethodPost, "/api/contact?lang=en", payload, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second contact: %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Kind != "rate_limited" || body.Error.RetryAfterSeconds != 3600 {
		t.Fatalf("unexpected error %+v", body.Error)
	}
	if w.Header().Get("Retry-After") != "3600" {
		t.Fatalf("expected Retry-After header, got %q", w.Header().Get("Retry-After"))
	}
	if body.Error.Message != "You have already submitted a contact form. You can try again in 60 minutes." {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}

	// shared scope: the newsletter signup is limited too
	w = do(r, http.MethodPost, "/api/newsletter/subscribe", `{"email":"ada@example.com"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("subscribe after contact: %d", w.Code)
	}
}

func TestContact_InvalidField(t *testing.T) {
	r, sender := newTestServer(t, testConfig())
	payload := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"` + strings.Repeat("x", 5001) + `"}`

	w := do(r, http.MethodPost, "/api/contact", payload, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Field != "message" || body.Error.Kind != "invalid_input" {
		t.Fatalf("unexpected error %+v", body.Error)
	}
	if len(sender.Messages()) != 0 {
		t.Fatalf("no email should be sent")
	}
}

func TestAdminRoutes_RequireBasicAuth(t *testing.T) {
	r, sender := newTestServer(t, testConfig())

	if w := do(r, http.MethodGet, "/api/admin/newsletter/subscribers", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/newsletter/subscribers", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":0`) {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	sender.FailOn(notification.SubjectUnsubscribeAdmin, &mailer.ProviderError{StatusCode: 500, Body: "down"})
	req = httptest.NewRequest(http.MethodPost, "/api/admin/newsletter/unsubscribe-notification", strings.NewReader(`{"email":"bob@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":false`) {
		t.Fatalf("unsubscribe notification: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutes_DisabledWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.AdminUser, cfg.AdminPass = "", ""
	r, _ := newTestServer(t, cfg)

	for _, path := range []string{"/api/admin/newsletter/subscribers", "/api/admin/contact/submissions"} {
		if w := do(r, http.MethodGet, path, "", nil); w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestPublicPOST_ThrottledByPeerAddress(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.IPRPS = 0.01
	r, _ := newTestServer(t, cfg)

	post := func(email, forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/newsletter/subscribe", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwarded)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := post("first@example.com", "198.51.100.1"); w.Code != http.StatusCreated {
		t.Fatalf("first subscribe: %d %s", w.Code, w.Body.String())
	}
	w := post("second@example.com", "198.51.100.2")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("rotated X-Forwarded-For should still be throttled, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" || decodeError(t, w).Error.Kind != "rate_limited" {
		t.Fatalf("expected rate_limited envelope, got %s", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	w := do(r, http.MethodOptions, "/api/contact", "", map[string]string{"Origin": "https://improtango.fi"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://improtango.fi" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	w = do(r, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://evil.example"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin should not be allowed, got %q", got)
	}
}
