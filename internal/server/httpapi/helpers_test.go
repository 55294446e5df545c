package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/server/auth"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/memory"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

const testSecret = "httpapi-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router  *gin.Engine
	store   *memory.Manager
	tokens  *auth.TokenManager
	metrics *Metrics
}

type envOption func(*config.Config)

func withRotation() envOption {
	return func(c *config.Config) { c.RotateRefreshTokens = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	for _, o := range opts {
		o(cfg)
	}

	// memory repositories ignore the handle; sqlite only backs the transactions
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenManager(testSecret, time.Minute, time.Hour)
	require.NoError(t, err)

	m := memory.NewManager()
	metrics := NewMetrics()

	r := NewRouter(Deps{
		Sessions:   services.NewSessionService(db, m, tokens, nil, cfg),
		Users:      services.NewUserService(db, m, cfg),
		Categories: services.NewCategoryService(db, m),
		Articles:   services.NewArticleService(db, m),
		Comments:   services.NewCommentService(db, m),
		Settings:   services.NewSettingsService(db, m),
		Dashboard:  services.NewDashboardService(db, m),
		Site:       services.NewSiteService(db, m),
		Guard:      services.NewGuard(db, m),
		Metrics:    metrics,
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	})

	return &testEnv{router: r, store: m, tokens: tokens, metrics: metrics}
}

func (e *testEnv) seedUser(t *testing.T, userName, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u, err := e.store.Users(nil).Create(context.Background(), &models.User{
		FullName:     userName,
		UserName:     userName,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

type reply struct {
	Code    int
	Body    testEnvelope
	Cookies map[string]*http.Cookie
}

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
}

func (r reply) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Data, dst), "data: %s", r.Body.Data)
}

// do sends one request through the router. Cookies in jar are attached.
func (e *testEnv) do(t *testing.T, method, path string, body any, jar ...*http.Cookie) reply {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range jar {
		if c != nil {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	out := reply{Code: rec.Code, Cookies: map[string]*http.Cookie{}}
	for _, c := range rec.Result().Cookies() {
		out.Cookies[c.Name] = c
	}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" &&
		bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.Body), "body: %s", rec.Body.String())
	}
	return out
}

// login returns the access and refresh cookies for a successful login.
func (e *testEnv) login(t *testing.T, userName, password string) (access, refresh *http.Cookie) {
	t.Helper()
	r := e.do(t, http.MethodPost, "/api/login", map[string]string{"username": userName, "password": password})
	require.Equal(t, http.StatusOK, r.Code, r.Body.Message)
	access, refresh = r.Cookies["accessToken"], r.Cookies["refreshToken"]
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}
