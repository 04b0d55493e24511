package httpmw

import (
	"fmt"
	"net/http"

	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// Recover turns a handler panic into a logged error and a 500. onPanic, if
// set, runs after logging (e.g. to count panics). http.ErrAbortHandler is
// re-raised so net/http can abort the connection as intended.
func Recover(L log.Logger, onPanic func()) func(http.Handler) http.Handler {
	if L == nil {
		L = log.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				L.Error(r.Context(), xerrors.WithStack(err), "httpserver panic recovered",
					"http.request.method", r.Method,
					"url.path", r.URL.Path,
				)
				if onPanic != nil {
					onPanic()
				}
				w.Header().Set("Cache-Control", "no-store")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
