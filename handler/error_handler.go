package handler

import (
	"net/http"
	"oauth2-token-store/common"
	"oauth2-token-store/logger"

	"github.com/sirupsen/logrus"
)

// ErrorHandlingMiddleware adapts a handler returning *common.AppError to
// http.HandlerFunc. Panics are logged and answered with 500.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  rec,
				}).Error("Recovered from panic in handler")
				common.NewAppError(http.StatusInternalServerError, "Internal server error", nil).Send(w)
			}
		}()

		if err := next(w, r); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": err.Code,
			}).Debug("Request failed")
			err.Send(w)
		}
	}
}
