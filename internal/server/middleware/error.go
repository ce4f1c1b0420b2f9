package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached by a handler as an RFC 9457 problem.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		problem := toProblem(c.Errors.Last().Err)
		problem.Instance = c.Request.URL.Path

		if problem.Log != nil {
			fields := []zap.Field{
				zap.Int("status", problem.Status),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.Error(problem.Log),
			}
			if problem.Status >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
			} else {
				logger.Warn("Request failed", fields...)
			}
		}

		// RFC 9457 dictates the json is at the root
		c.Header("Content-Type", "application/problem+json")
		c.JSON(problem.Status, problem)
		c.Abort()
	}
}

func toProblem(err error) *api.Problem {
	var problem *api.Problem
	if errors.As(err, &problem) {
		return problem
	}

	var verr *analytics.ValidationError
	switch {
	case errors.As(err, &verr):
		return api.ValidationError(map[string]string{verr.Field: verr.Reason})
	case errors.Is(err, analytics.ErrNotFound):
		return api.NotFoundError(err.Error())
	case errors.Is(err, analytics.ErrStoreUnavailable):
		return api.ServiceUnavailableError("The record store is unavailable. Try again later.", err)
	default:
		return api.InternalError(err)
	}
}
