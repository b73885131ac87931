package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/accounts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/backoffice"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/catalog"
	commonauth "github.com/Antoniofe-cpu/tempus-concierge/internal/common/auth"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/config"
	commonerrors "github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/drafts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/flow"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/sessions"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/submissions"
)

// fakeProvider is an in-memory stand-in for Keycloak.
type fakeProvider struct {
	users     map[string]*commonauth.User
	passwords map[string]string
	nextID    string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		users:     map[string]*commonauth.User{},
		passwords: map[string]string{},
		nextID:    "kc-1",
	}
}

func (f *fakeProvider) Login(ctx context.Context, email, password string) (*commonauth.TokenResponse, error) {
	if f.passwords[email] != password {
		return nil, commonerrors.NewInvalidCredentialsError()
	}
	return &commonauth.TokenResponse{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (f *fakeProvider) CreateUser(ctx context.Context, user *commonauth.User) (*commonauth.User, error) {
	if _, exists := f.users[user.Email]; exists {
		return nil, commonerrors.NewEmailAlreadyInUseError(user.Email)
	}
	created := *user
	created.ID = f.nextID
	f.users[user.Email] = &created
	return &created, nil
}

func (f *fakeProvider) SetPassword(ctx context.Context, userID, password string) error {
	for email, u := range f.users {
		if u.ID == userID {
			f.passwords[email] = password
		}
	}
	return nil
}

func (f *fakeProvider) GetUserByEmail(ctx context.Context, email string) (*commonauth.User, error) {
	return f.users[email], nil
}

func (f *fakeProvider) SendPasswordResetEmail(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeProvider) Logout(ctx context.Context, refreshToken string) error {
	return nil
}

type testEnv struct {
	server   *Server
	provider *fakeProvider
	sqlMock  sqlmock.Sqlmock
	drafts   drafts.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewNoOpLogger()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	provider := newFakeProvider()
	sessionStore := sessions.NewStore(redisClient, time.Hour, log)
	draftStore := drafts.NewRedisStore(redisClient, drafts.DefaultTTL, log)
	catalogRepo := catalog.NewRepository(db)

	cfg := &config.Config{}
	cfg.App.Name = "tempus-concierge"

	srv := New(cfg, Dependencies{
		Accounts: accounts.NewService(accounts.ServiceDependencies{
			Provider:    provider,
			Sessions:    sessionStore,
			AdminEmails: []string{"admin@tempus.example.com"},
			Realm:       "tempus",
			Logger:      log,
		}),
		Submissions: submissions.NewService(submissions.ServiceDependencies{
			Repository: submissions.NewPostgresRepository(db, log),
			Logger:     log,
		}),
		Coordinator: flow.NewCoordinator(draftStore, log),
		Reconciler:  flow.NewReconciler(draftStore, log),
		Catalog:     catalogRepo,
		Search:      catalog.NewSearcher(nil, "watches", catalogRepo, log),
		Backoffice:  backoffice.NewService(backoffice.NewRepository(db), log),
		Logger:      log,
	})

	return &testEnv{server: srv, provider: provider, sqlMock: mock, drafts: draftStore}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(rec, req)
	return rec
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withClientCookie(id string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: clientCookie, Value: id})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ==========================
// Health and auth
// ==========================

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tempus-concierge", decode(t, rec)["service"])
}

func TestServer_SignUpAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name":     "Mario Rossi",
		"email":    "mario@example.com",
		"password": "segreto123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	rec = env.do(t, "GET", "/api/auth/me", nil, withBearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mario@example.com", decode(t, rec)["email"])
}

func TestServer_SignIn_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signin", map[string]string{
		"email":    "nessuno@example.com",
		"password": "x",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, rec)["code"])
}

func TestServer_SignOutKillsSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Mario", "email": "m@e.it", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decode(t, rec)["token"].(string)

	rec = env.do(t, "POST", "/api/auth/signout", nil, withBearer(token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/auth/me", nil, withBearer(token))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ==========================
// Submission round trip
// ==========================

func validSellPayload() map[string]interface{} {
	return map[string]interface{}{
		"watchBrand":   "Rolex",
		"watchModel":   "Daytona",
		"condition":    "Excellent",
		"desiredPrice": 28000,
		"name":         "Mario Rossi",
		"email":        "mario@example.com",
	}
}

func TestServer_AnonymousSubmitStagesDraftAndRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/forms/sellForm",
		map[string]interface{}{"data": validSellPayload()},
		withClientCookie("visitor-1"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "redirect", body["action"])
	assert.Equal(t, flow.NotificationLoginRequired, body["notification"])

	redirectURL, err := url.Parse(body["redirectUrl"].(string))
	require.NoError(t, err)
	assert.Equal(t, flow.SignInPath, redirectURL.Path)
	assert.Equal(t, "/vendi", redirectURL.Query().Get("redirect"))

	draft, err := env.drafts.Load(context.Background(), "visitor-1", "sellForm")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Daytona", draft.Data["watchModel"])
}

func TestServer_FormFetchRestoresDraftAfterSignIn(t *testing.T) {
	env := newTestEnv(t)

	// stage anonymously
	rec := env.do(t, "POST", "/api/forms/sellForm",
		map[string]interface{}{"data": validSellPayload()},
		withClientCookie("visitor-1"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// sign in
	rec = env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Mario Rossi", "email": "mario@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decode(t, rec)["token"].(string)

	// come back to the form with the round-trip marker
	rec = env.do(t, "GET", "/api/forms/sellForm?fromForm=true&origin=sellForm&redirect=%2Fvendi", nil,
		withBearer(token), withClientCookie("visitor-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "done", body["state"])
	assert.Equal(t, flow.NotificationDataRestored, body["notification"])
	assert.Equal(t, "/vendi", body["cleanUrl"])

	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "Daytona", fields["watchModel"])
	assert.Equal(t, "Mario Rossi", fields["name"])

	// the slot is consumed
	draft, err := env.drafts.Load(context.Background(), "visitor-1", "sellForm")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestServer_FormFetchWithoutMarkerOnlyPrefills(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/forms/sellForm",
		map[string]interface{}{"data": validSellPayload()},
		withClientCookie("visitor-1"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Mario Rossi", "email": "mario@example.com", "password": "pw",
	})
	token := decode(t, rec)["token"].(string)

	rec = env.do(t, "GET", "/api/forms/sellForm", nil,
		withBearer(token), withClientCookie("visitor-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "prefill", body["state"])

	// draft stays for a later matching round trip
	draft, err := env.drafts.Load(context.Background(), "visitor-1", "sellForm")
	require.NoError(t, err)
	require.NotNil(t, draft)
}

func TestServer_AuthenticatedSubmitPersists(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Mario Rossi", "email": "mario@example.com", "password": "pw",
	})
	token := decode(t, rec)["token"].(string)

	env.sqlMock.ExpectExec("INSERT INTO sell_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec = env.do(t, "POST", "/api/forms/sellForm",
		map[string]interface{}{"data": validSellPayload()},
		withBearer(token), withClientCookie("visitor-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.NotEmpty(t, body["requestId"])
	assert.Equal(t, "Nuova", body["status"])
	require.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestServer_AuthenticatedSubmitValidationFailure(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Mario", "email": "m@e.it", "password": "pw",
	})
	token := decode(t, rec)["token"].(string)

	payload := validSellPayload()
	delete(payload, "watchBrand")

	rec = env.do(t, "POST", "/api/forms/sellForm",
		map[string]interface{}{"data": payload},
		withBearer(token), withClientCookie("visitor-1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "SUBMISSION_VALIDATION_FAILED", body["code"])
	assert.Contains(t, body["fieldErrors"], "watchBrand")
}

func TestServer_UnknownFormKindIs404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/forms/contactForm", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// ==========================
// Admin guard
// ==========================

func TestServer_AdminRoutesRequireAdminSession(t *testing.T) {
	env := newTestEnv(t)

	// anonymous
	rec := env.do(t, "GET", "/api/admin/dashboard", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// signed in, not an admin
	rec = env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Mario", "email": "mario@example.com", "password": "pw",
	})
	token := decode(t, rec)["token"].(string)

	rec = env.do(t, "GET", "/api/admin/dashboard", nil, withBearer(token))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_AdminStatusUpdate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Ada Admin", "email": "admin@tempus.example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decode(t, rec)["token"].(string)

	env.sqlMock.ExpectExec("UPDATE repair_requests SET status").
		WithArgs("In Riparazione", sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec = env.do(t, "PUT", "/api/admin/requests/repairForm/r1/status",
		map[string]string{"status": "In Riparazione"}, withBearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestServer_AdminStatusUpdate_OffDomainStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup", map[string]string{
		"name": "Ada Admin", "email": "admin@tempus.example.com", "password": "pw",
	})
	token := decode(t, rec)["token"].(string)

	rec = env.do(t, "PUT", "/api/admin/requests/sellForm/s1/status",
		map[string]string{"status": "In Riparazione"}, withBearer(token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATUS", decode(t, rec)["code"])
}

// ==========================
// Catalog
// ==========================

func TestServer_CatalogList(t *testing.T) {
	env := newTestEnv(t)

	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "brand", "model", "reference", "year", "price", "condition",
		"description", "image_url", "is_available", "created_at", "updated_at",
	}).AddRow("w1", "Rolex", "Submariner", "126610LN", 2023, 12500.0, "Excellent",
		"Iconic diver", "https://img/w1", true, now, now)

	env.sqlMock.ExpectQuery("SELECT (.+) FROM watch_products").
		WillReturnRows(rows)

	rec := env.do(t, "GET", "/api/catalog?brand=Rolex", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
	products := body["products"].([]interface{})
	assert.Equal(t, "Submariner", products[0].(map[string]interface{})["model"])
}

// ==========================
// Session Middleware
// ==========================

func TestWithSession_ResolvesAuthWatcher(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/forms/sellForm", nil)

	env.server.withSession()(c)

	require.NotNil(t, watcherFrom(c))
	state := authStateFrom(c)
	assert.False(t, state.Loading)
	assert.False(t, state.Identity.Present())
}

func TestFormSubmit_AuthResolutionPendingDoesNothing(t *testing.T) {
	env := newTestEnv(t)

	raw, err := json.Marshal(map[string]interface{}{"data": validSellPayload()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/forms/sellForm", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "kind", Value: "sellForm"}}
	c.Set(ctxClientID, "visitor-9")

	// No auth watcher in the context: session resolution never ran.
	env.server.handleFormSubmit(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, string(flow.ActionNone), decode(t, rec)["action"])

	// Neither staged nor persisted.
	draft, err := env.drafts.Load(context.Background(), "visitor-9", "sellForm")
	require.NoError(t, err)
	assert.Nil(t, draft)
	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}
