package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/01moynul/mintverse-golang/internal/approval"
	"github.com/01moynul/mintverse-golang/internal/auth"
	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/handlers"
	"github.com/01moynul/mintverse-golang/internal/metrics"
	"github.com/01moynul/mintverse-golang/internal/middleware"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	tokens *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	db := sqlx.NewDb(conn, "mysql")

	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)
	cfg := &config.Config{
		CORSOrigin: "http://localhost:5173",
		UploadDir:  t.TempDir(),
		Auth:       config.AuthConfig{JWTSecret: "routes-test-secret", TokenTTL: time.Hour, VerifyTokenTTL: time.Hour},
	}
	tokens := auth.NewTokenIssuer(cfg.Auth)
	m := metrics.New()

	h := &handlers.Handlers{
		DB:        db,
		Config:    cfg,
		Tokens:    tokens,
		Approvals: approval.NewService(db, nil, nil, m, log),
		Log:       log,
	}
	router := SetupRouter(h, Options{
		Metrics:     m,
		AuthLimiter: middleware.NewRateLimiter(60, 5, log),
	})
	return &testServer{router: router, mock: mock, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(t *testing.T, id int64, role models.Role) string {
	t.Helper()
	tok, err := s.tokens.GenerateToken(id, role)
	require.NoError(t, err)
	s.mock.ExpectQuery("SELECT role FROM users WHERE id = ?").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(string(role)))
	return tok
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/v1/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPatch, "/v1/admin/withdrawals/1/approve", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 5, models.RoleUser)

	w := s.do(t, http.MethodPatch, "/v1/admin/withdrawals/1/approve", tok)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestAdminCanListRequests(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 1, models.RoleAdmin)
	s.mock.ExpectQuery("FROM withdrawals r").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := s.do(t, http.MethodGet, "/v1/admin/withdrawals", tok)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestRoleIsReadFromDatabase(t *testing.T) {
	s := newTestServer(t)
	// token says admin, the database says the account was demoted
	tok, err := s.tokens.GenerateToken(5, models.RoleAdmin)
	require.NoError(t, err)
	s.mock.ExpectQuery("SELECT role FROM users WHERE id = ?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("user"))

	w := s.do(t, http.MethodGet, "/v1/admin/withdrawals", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/v1/ping", "")

	w := s.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mintverse_http_requests_total")
}
