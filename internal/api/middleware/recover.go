package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/obra-coop/obranet/internal/api/respond"
)

// Recoverer converts handler panics into 500 responses instead of killing
// the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				respond.Err(w, &respond.Error{
					Code:    respond.CodeInternalError,
					Message: "internal server error",
					Status:  http.StatusInternalServerError,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
