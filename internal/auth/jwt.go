package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A verification link must never work as a session token
// and the other way round.
const (
	PurposeSession     = "session"
	PurposeVerifyEmail = "verify_email"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongPurpose = errors.New("token issued for another purpose")
)

// Claims is the payload of every token we sign.
type Claims struct {
	Role    models.Role `json:"role,omitempty"`
	Email   string      `json:"email,omitempty"`
	Purpose string      `json:"purpose"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// TokenIssuer signs and validates HS256 tokens with the configured secret.
type TokenIssuer struct {
	secret    []byte
	ttl       time.Duration
	verifyTTL time.Duration
	now       func() time.Time
}

func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:    []byte(cfg.JWTSecret),
		ttl:       cfg.TokenTTL,
		verifyTTL: cfg.VerifyTokenTTL,
		now:       time.Now,
	}
}

// TTL is the lifetime of a session token; the login cookie uses it as Max-Age.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// GenerateToken creates a session token for a user.
func (t *TokenIssuer) GenerateToken(userID int64, role models.Role) (string, error) {
	return t.sign(Claims{Role: role, Purpose: PurposeSession}, userID, t.ttl)
}

// GenerateVerifyToken creates the token embedded in the email verification
// link. It is bound to the address it was sent to.
func (t *TokenIssuer) GenerateVerifyToken(userID int64, email string) (string, error) {
	return t.sign(Claims{Email: email, Purpose: PurposeVerifyEmail}, userID, t.verifyTTL)
}

func (t *TokenIssuer) sign(claims Claims, userID int64, ttl time.Duration) (string, error) {
	now := t.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken parses a session token.
func (t *TokenIssuer) ValidateToken(tokenString string) (*Claims, error) {
	return t.parse(tokenString, PurposeSession)
}

// ValidateVerifyToken parses an email verification token.
func (t *TokenIssuer) ValidateVerifyToken(tokenString string) (*Claims, error) {
	return t.parse(tokenString, PurposeVerifyEmail)
}

func (t *TokenIssuer) parse(tokenString, purpose string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return &claims, nil
}
