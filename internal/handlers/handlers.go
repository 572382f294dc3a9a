package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/01moynul/mintverse-golang/internal/ai"
	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/approval"
	"github.com/01moynul/mintverse-golang/internal/auth"
	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/email"
	"github.com/01moynul/mintverse-golang/internal/middleware"
	"github.com/01moynul/mintverse-golang/internal/stats"
	"github.com/01moynul/mintverse-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB        *sqlx.DB
	Config    *config.Config
	Tokens    *auth.TokenIssuer
	Approvals *approval.Service
	Fees      approval.FeeQuoter
	Mailer    email.Mailer
	Files     *storage.FileStore
	Stats     *stats.Store
	AIService *ai.AIService // nil when no Gemini key is configured
	Log       *logrus.Entry
}

const pageSize = 12

// respondError writes the status and message for err. Unexpected errors
// are logged with the route and hidden from the client.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.WithError(err).WithField("route", c.FullPath()).Error("handler failed")
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": apperror.Message(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperror.ErrValidation, name)
	}
	return id, nil
}

// page returns the LIMIT and OFFSET for the ?page= query parameter.
func page(c *gin.Context) (limit, offset int) {
	p, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || p < 1 {
		p = 1
	}
	return pageSize, (p - 1) * pageSize
}

func actor(c *gin.Context) approval.Actor {
	id, role := middleware.CurrentUser(c)
	return approval.Actor{ID: id, Role: role}
}

func userID(c *gin.Context) int64 {
	id, _ := middleware.CurrentUser(c)
	return id
}

// isDuplicate reports a MySQL unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
