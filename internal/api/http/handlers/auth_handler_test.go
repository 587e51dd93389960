package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/depositdefenders/accounts-service/internal/api/http"
	"github.com/depositdefenders/accounts-service/internal/api/http/handlers"
	"github.com/depositdefenders/accounts-service/internal/auth"
	"github.com/depositdefenders/accounts-service/internal/config"
	"github.com/depositdefenders/accounts-service/internal/domain"
	"github.com/depositdefenders/accounts-service/internal/events"
	"github.com/depositdefenders/accounts-service/internal/observability"
	"github.com/depositdefenders/accounts-service/internal/repository"
	"github.com/depositdefenders/accounts-service/internal/service"
)

type memUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*domain.User{}, byID: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	copied := *user
	r.byEmail[user.Email] = &copied
	r.byID[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	stored, ok := r.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

type memResetRepo struct {
	byToken map[string]*repository.PasswordResetToken
}

func (r *memResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	copied := *token
	r.byToken[token.Token] = &copied
	return nil
}

func (r *memResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.byToken[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (r *memResetRepo) MarkUsed(_ context.Context, id string) error {
	for _, token := range r.byToken {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type stubPayments struct {
	fail bool
}

func (p *stubPayments) CreateCustomer(_ context.Context, email string, _ domain.Plan) (string, error) {
	if p.fail {
		return "", errors.New("provider unavailable")
	}
	return "cus_" + email, nil
}

type stubContentRepo struct {
	landing *domain.LandingPage
	tiers   []domain.PricingTier
}

func (r *stubContentRepo) GetLandingPage(context.Context) (*domain.LandingPage, error) {
	if r.landing == nil {
		return nil, pgx.ErrNoRows
	}
	return r.landing, nil
}

func (r *stubContentRepo) ListPricingTiers(context.Context) ([]domain.PricingTier, error) {
	return r.tiers, nil
}

type testEnv struct {
	app   *fiber.App
	users *memUserRepo
}

func newTestApp(t *testing.T, payments *stubPayments, content *stubContentRepo) *testEnv {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:            "handler-test-secret",
			TokenTTLDays:         7,
			BcryptCost:           bcrypt.MinCost,
			ResetTokenTTLMinutes: 30,
		},
	}

	users := newMemUserRepo()
	logger := zap.NewNop()
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: &memResetRepo{byToken: map[string]*repository.PasswordResetToken{}},
		Payments:          payments,
		Dispatcher:        events.NewInMemoryDispatcher(),
		Logger:            logger,
	})
	contentService := service.NewContentService(content, nil, 0, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService, false),
		Content:        handlers.NewContentHandler(contentService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), users),
	})

	return &testEnv{app: app, users: users}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func errorMessage(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	msg, _ := errObj["message"].(string)
	return msg
}

func TestSignupEndpoint_Success(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "a@b.com", "password": "longenough1", "plan": "free",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	require.Equal(t, "a@b.com", user["email"])
	require.Equal(t, "free", user["plan"])
	require.NotEmpty(t, user["id"])
	require.NotContains(t, user, "passwordHash")

	var authCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.TokenCookieName {
			authCookie = cookie
		}
	}
	require.NotNil(t, authCookie, "auth cookie should be set")
	require.True(t, authCookie.HttpOnly)
	require.Greater(t, authCookie.MaxAge, int((6 * 24 * time.Hour).Seconds()))
}

func TestSignupEndpoint_ValidationFailure(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "a@b.com", "password": "short", "plan": "free",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "VALIDATION_FAILED", errObj["code"])
	details := errObj["details"].(map[string]any)
	require.Contains(t, details, "password")
}

func TestSignupEndpoint_Duplicate(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	payload := map[string]any{"email": "a@b.com", "password": "longenough1", "plan": "free"}
	resp := postJSON(t, env.app, "/auth/signup", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, env.app, "/auth/signup", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Directory still has exactly one record for the email.
	require.Len(t, env.users.byEmail, 1)
}

func TestSignupEndpoint_ProPaymentFailure(t *testing.T) {
	env := newTestApp(t, &stubPayments{fail: true}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "pro@b.com", "password": "longenough1", "plan": "pro",
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj := body["error"].(map[string]any)
	require.Equal(t, "PAYMENT_SETUP_FAILED", errObj["code"])
	// The raw provider error never reaches the client.
	require.NotContains(t, errObj["message"], "provider unavailable")

	require.Empty(t, env.users.byEmail)
}

func TestLoginEndpoint_EnumerationResistance(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "a@b.com", "password": "longenough1", "plan": "free",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	unknown := postJSON(t, env.app, "/auth/login", map[string]any{
		"email": "nobody@b.com", "password": "longenough1",
	})
	wrong := postJSON(t, env.app, "/auth/login", map[string]any{
		"email": "a@b.com", "password": "longenough2",
	})

	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	require.Equal(t, http.StatusUnauthorized, wrong.StatusCode)

	unknownMsg := errorMessage(t, decodeBody(t, unknown))
	wrongMsg := errorMessage(t, decodeBody(t, wrong))
	require.Equal(t, unknownMsg, wrongMsg)
	require.Equal(t, "invalid email or password", wrongMsg)
}

func TestLoginEndpoint_Success(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "a@b.com", "password": "longenough1", "plan": "pro",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, env.app, "/auth/login", map[string]any{
		"email": "a@b.com", "password": "longenough1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	require.Equal(t, "pro", user["plan"])
	require.Equal(t, "active", user["subscriptionStatus"])
}

func TestMeEndpoint(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "a@b.com", "password": "longenough1", "plan": "free",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeBody(t, resp)["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authed, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, authed.StatusCode)
	user := decodeBody(t, authed)["user"].(map[string]any)
	require.Equal(t, "a@b.com", user["email"])

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	anon, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, anon.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	bad, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, bad.StatusCode)
}

func TestMeEndpoint_CookieToken(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	resp := postJSON(t, env.app, "/auth/signup", map[string]any{
		"email": "a@b.com", "password": "longenough1", "plan": "free",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var authCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.TokenCookieName {
			authCookie = cookie
		}
	}
	require.NotNil(t, authCookie)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(authCookie)
	authed, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestContentEndpoints(t *testing.T) {
	content := &stubContentRepo{
		landing: &domain.LandingPage{Slug: "home", Title: "Deposit Defenders"},
		tiers: []domain.PricingTier{
			{Slug: "free", TierName: "Free"},
			{Slug: "pro", TierName: "Pro", IsFeatured: true},
		},
	}
	env := newTestApp(t, &stubPayments{}, content)

	req := httptest.NewRequest(http.MethodGet, "/content/landing", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]any)
	require.Equal(t, "home", data["slug"])

	req = httptest.NewRequest(http.MethodGet, "/content/pricing", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tiers := decodeBody(t, resp)["data"].([]any)
	require.Len(t, tiers, 2)
}

func TestContentEndpoint_LandingMissing(t *testing.T) {
	env := newTestApp(t, &stubPayments{}, &stubContentRepo{})

	req := httptest.NewRequest(http.MethodGet, "/content/landing", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
