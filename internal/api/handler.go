package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-signup-backend/internal/eligibility"
	"shift-signup-backend/internal/signup"
	"shift-signup-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	coord   *signup.Coordinator
	webpush *webpush.Options
	log     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, coord *signup.Coordinator, webpushOptions *webpush.Options, log *zap.Logger) *Handler {
	return &Handler{
		store:   s,
		coord:   coord,
		webpush: webpushOptions,
		log:     log,
	}
}

// respondError maps an error to its HTTP status.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, signup.ErrNotTrainingSession):
		status = http.StatusBadRequest
	case errors.Is(err, signup.ErrNotEligible):
		status = http.StatusForbidden
	case errors.Is(err, signup.ErrNotSignedUp):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, eligibility.ErrEvaluationUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// idParam parses a positive integer path parameter, writing a 400 when it
// is malformed.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// yearQuery reads the year query parameter, defaulting to the current year.
func yearQuery(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, false
	}
	return year, true
}
