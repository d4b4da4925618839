package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeyTable ctxKey = iota

// PinHeader carries the scorekeeper pin of a locked table.
const PinHeader = "X-Table-Pin"

func tableMiddleware(tables *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := strings.ToUpper(chi.URLParam(r, "code"))
			if code == "" {
				writeError(w, http.StatusNotFound, "table not found")
				return
			}

			t, err := tables.Get(code)
			if err != nil {
				writeError(w, http.StatusNotFound, "table not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTable, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// scorekeeperMiddleware guards mutating routes of pin-locked tables.
func scorekeeperMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tableFrom(r).Authorized(r.Header.Get(PinHeader)) {
			writeError(w, http.StatusUnauthorized, "missing or wrong table pin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tableFrom(r *http.Request) *Table {
	return r.Context().Value(ctxKeyTable).(*Table)
}
