package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/01moynul/mintverse-golang/internal/auth"
	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var roleQuery = regexp.QuoteMeta("SELECT role FROM users WHERE id = ?")

func newTokens() *auth.TokenIssuer {
	return auth.NewTokenIssuer(config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour, VerifyTokenTTL: time.Hour})
}

func protectedRouter(t *testing.T, admin bool) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(sqlx.NewDb(db, "mysql"), newTokens())}
	if admin {
		chain = append(chain, AdminMiddleware())
	}
	chain = append(chain, func(c *gin.Context) {
		id, role := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/p", chain...)
	return r, mock
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	r, _ := protectedRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	r, _ := protectedRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBearer(t *testing.T) {
	r, mock := protectedRouter(t, false)
	tok, err := newTokens().GenerateToken(9, models.RoleUser)
	require.NoError(t, err)
	mock.ExpectQuery(roleQuery).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("user"))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":9,"role":"user"}`, w.Body.String())
}

func TestAuthMiddlewareCookie(t *testing.T) {
	r, mock := protectedRouter(t, false)
	tok, err := newTokens().GenerateToken(3, models.RoleUser)
	require.NoError(t, err)
	mock.ExpectQuery(roleQuery).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("user"))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	r, mock := protectedRouter(t, false)
	tok, err := newTokens().GenerateToken(3, models.RoleUser)
	require.NoError(t, err)
	mock.ExpectQuery(roleQuery).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"role"}))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddlewareUsesCurrentRole(t *testing.T) {
	r, mock := protectedRouter(t, true)
	// Token still says admin but the account has been demoted.
	tok, err := newTokens().GenerateToken(5, models.RoleAdmin)
	require.NoError(t, err)
	mock.ExpectQuery(roleQuery).WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("user"))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	r, mock := protectedRouter(t, true)
	tok, err := newTokens().GenerateToken(5, models.RoleUser)
	require.NoError(t, err)
	mock.ExpectQuery(roleQuery).WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("http://localhost:5173"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimiter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rl := NewRateLimiter(1, 2, logrus.NewEntry(logger))

	r := gin.New()
	r.POST("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "rate limit exceeded", hook.LastEntry().Message)

	rl.idle = 0
	rl.Cleanup()
	assert.Empty(t, rl.limiters)
}

func TestRequestLoggerTagsRequest(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(logrus.NewEntry(logger)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 404, entry.Data["status"])
}
