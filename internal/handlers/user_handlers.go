package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/email"
	"github.com/01moynul/mintverse-golang/internal/middleware"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Registration & Login ---
//

type RegisterUserInput struct {
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email,max=120"`
	Password   string `json:"password" binding:"required"`
	EthAddress string `json:"ethAddress" binding:"omitempty,eth_addr"`
}

// Register is the handler for POST /v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := models.ValidatePassword(input.Password); err != nil {
		badRequest(c, err)
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.respondError(c, fmt.Errorf("hash password: %w", err))
		return
	}

	// 3. --- Save to Database ---
	var eth *string
	if input.EthAddress != "" {
		eth = &input.EthAddress
	}
	query := `
		INSERT INTO users (name, email, password_hash, role, eth_address)
		VALUES (?, ?, ?, ?, ?)`
	res, err := h.DB.ExecContext(c.Request.Context(), query, input.Name, input.Email, password.Hash, models.RoleUser, eth)
	if isDuplicate(err) {
		h.respondError(c, fmt.Errorf("%w: an account with this email already exists", apperror.ErrConflict))
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("create user: %w", err))
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 4. --- Send Verification Email ---
	h.sendVerification(c, id, input.Name, input.Email)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Check your inbox to verify your email.",
		"userId":  id,
	})
}

func (h *Handlers) sendVerification(c *gin.Context, id int64, name, to string) {
	token, err := h.Tokens.GenerateVerifyToken(id, to)
	if err != nil {
		h.Log.WithError(err).Warn("could not sign verification token")
		return
	}
	link := h.Config.BaseURL + "/verify-email?token=" + url.QueryEscape(token)
	if err := h.Mailer.Send(c.Request.Context(), email.Verification(to, name, link)); err != nil {
		h.Log.WithError(err).WithField("to", to).Warn("verification email not delivered")
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/auth/login. The token is returned in
// the body and also set as an HttpOnly cookie.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	// 1. --- Find User ---
	var user models.User
	err := h.DB.GetContext(c.Request.Context(), &user,
		"SELECT id, name, email, password_hash, role, is_email_verified FROM users WHERE email = ?", input.Email)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("load user: %w", err))
		return
	}

	// 2. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 3. --- Require Verified Email ---
	// Administrators are exempt; everyone else gets a fresh link.
	if !user.IsEmailVerified && user.Role != models.RoleAdmin {
		h.sendVerification(c, user.ID, user.Name, user.Email)
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first. A new verification link has been sent."})
		return
	}

	// 4. --- Issue Token ---
	token, err := h.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.respondError(c, fmt.Errorf("sign token: %w", err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.Tokens.TTL().Seconds()), "/", "", h.Config.Auth.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout clears the session cookie.
func (h *Handlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.Config.Auth.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

//
// --- Email Verification ---
//

type VerifyEmailInput struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmail is the handler for POST /v1/auth/verify-email
func (h *Handlers) VerifyEmail(c *gin.Context) {
	var input VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	claims, err := h.Tokens.ValidateVerifyToken(input.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification link"})
		return
	}
	id, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification link"})
		return
	}

	// The email must still match: a changed address needs a new link.
	res, err := h.DB.ExecContext(c.Request.Context(),
		"UPDATE users SET is_email_verified = 1 WHERE id = ? AND email = ?", id, claims.Email)
	if err != nil {
		h.respondError(c, fmt.Errorf("verify email: %w", err))
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

type ResendVerificationInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification is the handler for POST /v1/auth/resend-verification.
// It answers the same way whether or not the address is registered.
func (h *Handlers) ResendVerification(c *gin.Context) {
	var input ResendVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	var user models.User
	err := h.DB.GetContext(c.Request.Context(), &user,
		"SELECT id, name, email, is_email_verified FROM users WHERE email = ?", input.Email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		h.respondError(c, fmt.Errorf("load user: %w", err))
		return
	case !user.IsEmailVerified:
		h.sendVerification(c, user.ID, user.Name, user.Email)
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists and is unverified, a new link has been sent."})
}

//
// --- Profile ---
//

const userColumns = `id, name, email, role, eth_address, is_email_verified, created_at, updated_at,
	phone, bio, address, city, state, zipcode, country`

// GetProfile is the handler for GET /v1/me
func (h *Handlers) GetProfile(c *gin.Context) {
	var user models.User
	err := h.DB.GetContext(c.Request.Context(), &user, "SELECT "+userColumns+" FROM users WHERE id = ?", userID(c))
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(c, apperror.ErrNotFound)
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("load profile: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfileInput only changes the fields that are present.
type UpdateProfileInput struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	EthAddress *string `json:"ethAddress" binding:"omitempty,eth_addr"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Bio        *string `json:"bio" binding:"omitempty,max=1000"`
	Address    *string `json:"address" binding:"omitempty,max=150"`
	City       *string `json:"city" binding:"omitempty,max=50"`
	State      *string `json:"state" binding:"omitempty,max=50"`
	Zipcode    *string `json:"zipcode" binding:"omitempty,max=10"`
	Country    *string `json:"country" binding:"omitempty,max=50"`
}

// UpdateProfile is the handler for PATCH /v1/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	query := `
		UPDATE users SET
			name = COALESCE(?, name),
			eth_address = COALESCE(?, eth_address),
			phone = COALESCE(?, phone),
			bio = COALESCE(?, bio),
			address = COALESCE(?, address),
			city = COALESCE(?, city),
			state = COALESCE(?, state),
			zipcode = COALESCE(?, zipcode),
			country = COALESCE(?, country)
		WHERE id = ?`
	_, err := h.DB.ExecContext(c.Request.Context(), query,
		input.Name, input.EthAddress, input.Phone, input.Bio, input.Address,
		input.City, input.State, input.Zipcode, input.Country, userID(c))
	if err != nil {
		h.respondError(c, fmt.Errorf("update profile: %w", err))
		return
	}

	h.GetProfile(c)
}
