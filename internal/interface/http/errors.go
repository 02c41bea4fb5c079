package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/response"
	"github.com/oksasatya/go-ddd-event-hub/pkg/validation"
)

// StatusOf maps a coordinator error to its HTTP status.
func StatusOf(err error) int {
	switch apperr.Kind(err) {
	case apperr.ErrUnauthenticated, apperr.ErrInvalidCredentials, apperr.ErrInvalidToken, apperr.ErrTokenExpired:
		return http.StatusUnauthorized
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrConflict:
		return http.StatusConflict
	case apperr.ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// outcome is the metrics label for err.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperr.Kind(err) {
	case apperr.ErrUnauthenticated, apperr.ErrInvalidCredentials, apperr.ErrInvalidToken, apperr.ErrTokenExpired:
		return "unauthenticated"
	case apperr.ErrForbidden:
		return "forbidden"
	case apperr.ErrNotFound:
		return "not_found"
	case apperr.ErrConflict:
		return "conflict"
	case apperr.ErrValidation:
		return "validation"
	default:
		return "internal"
	}
}

// base carries what every handler needs to report failures.
type base struct {
	Logger  *logrus.Logger
	Metrics metrics.Recorder
	feature string
}

func newBase(feature string, logger *logrus.Logger, rec metrics.Recorder) base {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return base{Logger: logger, Metrics: rec, feature: feature}
}

func (b base) observe(op string, err error) {
	b.Metrics.RecordOperation(b.feature, op, outcome(err))
}

// fail writes the error envelope for err. Internal details stay in the log.
func (b base) fail(c *gin.Context, op string, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if b.Logger != nil {
			b.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"feature":    b.feature,
				"op":         op,
			}).Error("request failed")
		}
		msg = "internal server error"
	} else if errors.Is(err, apperr.ErrInvalidCredentials) {
		msg = apperr.ErrInvalidCredentials.Error()
	}
	response.Error[any](c, status, msg, nil)
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

// actorID is the authenticated caller's id, or "" for anonymous requests.
func actorID(c *gin.Context) string {
	if p, ok := middleware.Principal(c); ok {
		return p.SubjectID
	}
	return ""
}
