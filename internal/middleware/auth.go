package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/mintverse-golang/internal/auth"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// SessionCookie is the HttpOnly cookie set at login. Browsers send it
// instead of an Authorization header.
const SessionCookie = "mintverse_session"

// AuthMiddleware creates a gin.HandlerFunc that acts as our "security guard".
// The role is read from the database on every request so a demotion takes
// effect before the token expires.
func AuthMiddleware(db *sqlx.DB, tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Token (header first, then cookie) ---
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}

		// 2. --- Validate Token ---
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Load Current Role ---
		var role models.Role
		err = db.QueryRowContext(c.Request.Context(), "SELECT role FROM users WHERE id = ?", userID).Scan(&role)
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			return
		}

		// 4. --- Success ---
		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" || token == "" {
			return "", false
		}
		return token, true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// CurrentUser returns what AuthMiddleware stored on the context.
func CurrentUser(c *gin.Context) (int64, models.Role) {
	id := c.GetInt64(ContextUserID)
	role, _ := c.Get(ContextUserRole)
	r, _ := role.(models.Role)
	return id, r
}
