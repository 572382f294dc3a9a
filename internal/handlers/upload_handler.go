package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/gin-gonic/gin"
)

// saveUpload stores the image in the named multipart field and returns
// its stored file name.
func (h *Handlers) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%w: %s image is required", apperror.ErrValidation, field)
	}
	return h.Files.Save(file)
}

// discardUpload removes a stored file whose database row was never written.
func (h *Handlers) discardUpload(name string) {
	if err := h.Files.Remove(name); err != nil {
		h.Log.WithError(err).WithField("file", name).Warn("orphaned upload not removed")
	}
}

// uploadURL is used in responses so clients never build paths themselves.
func (h *Handlers) uploadURL(name string) string {
	return h.Files.URL(name)
}

// limitBody caps multipart requests before gin parses them.
func limitBody(c *gin.Context, max int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
}
