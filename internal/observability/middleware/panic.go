package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicRecoveryHTTP logs a handler panic and answers 500. http.ErrAbortHandler
// is re-raised so net/http can abort the connection quietly.
func PanicRecoveryHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "panic recovered",
				slog.String("event", "app.panic"),
				slog.Any("error", rec),
				slog.String("stack", string(debug.Stack())),
			)

			w.WriteHeader(http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
