package middleware

import (
	"fmt"
	"net/http"

	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// Recovery middleware перехватывает panic в handler'ах
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("Panic in HTTP handler", fmt.Errorf("%v", rec),
						"method", r.Method,
						"path", r.URL.Path,
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
