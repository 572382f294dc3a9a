package handlers

import (
	"net/http"
	"testing"

	"github.com/01moynul/mintverse-golang/internal/middleware"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secr3t!pass"

func TestRegisterSendsVerification(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectExec("INSERT INTO users").
		WithArgs("Ada", "ada@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	body := `{"name":"Ada","email":"ada@example.com","password":"` + testPassword + `"}`
	w := serve(http.MethodPost, "/r", "/r", body, 0, "", f.h.Register)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(11), decode(t, w)["userId"])
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "ada@example.com", f.mail.sent[0].To)
	assert.Contains(t, f.mail.sent[0].Body, "http://localhost:8080/verify-email?token=")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ada@example.com'"})

	body := `{"name":"Ada","email":"ada@example.com","password":"` + testPassword + `"}`
	w := serve(http.MethodPost, "/r", "/r", body, 0, "", f.h.Register)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, f.mail.sent)
}

func TestRegisterWeakPassword(t *testing.T) {
	f := newFixture(t)
	w := serve(http.MethodPost, "/r", "/r", `{"name":"Ada","email":"ada@example.com","password":"password"}`, 0, "", f.h.Register)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func expectLoginUser(t *testing.T, mock sqlmock.Sqlmock, role models.Role, verified bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("FROM users WHERE email = ?").
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "is_email_verified"}).
			AddRow(11, "Ada", "ada@example.com", string(hash), string(role), verified))
}

func login(f *fixture, password string) *http.Response {
	body := `{"email":"ada@example.com","password":"` + password + `"}`
	return serve(http.MethodPost, "/l", "/l", body, 0, "", f.h.Login).Result()
}

func sessionCookie(res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestLoginVerifiedUser(t *testing.T) {
	f := newFixture(t)
	expectLoginUser(t, f.mock, models.RoleUser, true)

	res := login(f, testPassword)

	require.Equal(t, http.StatusOK, res.StatusCode)
	cookie := sessionCookie(res)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	claims, err := f.h.Tokens.ValidateToken(cookie.Value)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Empty(t, f.mail.sent)
}

func TestLoginUnverifiedUserIsRefused(t *testing.T) {
	f := newFixture(t)
	expectLoginUser(t, f.mock, models.RoleUser, false)

	res := login(f, testPassword)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Nil(t, sessionCookie(res))
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "ada@example.com", f.mail.sent[0].To)
}

func TestLoginUnverifiedAdminIsAllowed(t *testing.T) {
	f := newFixture(t)
	expectLoginUser(t, f.mock, models.RoleAdmin, false)

	res := login(f, testPassword)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotNil(t, sessionCookie(res))
	assert.Empty(t, f.mail.sent)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	expectLoginUser(t, f.mock, models.RoleUser, false)

	res := login(f, "Wr0ng!pass")

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Nil(t, sessionCookie(res))
	// an unverified account with a bad password learns nothing and gets no mail
	assert.Empty(t, f.mail.sent)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	token, err := f.h.Tokens.GenerateVerifyToken(11, "ada@example.com")
	require.NoError(t, err)
	f.mock.ExpectExec("UPDATE users SET is_email_verified = 1 WHERE id = \\? AND email = \\?").
		WithArgs(int64(11), "ada@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := serve(http.MethodPost, "/v", "/v", `{"token":"`+token+`"}`, 0, "", f.h.VerifyEmail)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestVerifyEmailAfterAddressChange(t *testing.T) {
	f := newFixture(t)
	token, err := f.h.Tokens.GenerateVerifyToken(11, "old@example.com")
	require.NoError(t, err)
	f.mock.ExpectExec("UPDATE users SET is_email_verified = 1").
		WithArgs(int64(11), "old@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := serve(http.MethodPost, "/v", "/v", `{"token":"`+token+`"}`, 0, "", f.h.VerifyEmail)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestVerifyEmailRejectsSessionToken(t *testing.T) {
	f := newFixture(t)
	token, err := f.h.Tokens.GenerateToken(11, models.RoleUser)
	require.NoError(t, err)

	w := serve(http.MethodPost, "/v", "/v", `{"token":"`+token+`"}`, 0, "", f.h.VerifyEmail)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
