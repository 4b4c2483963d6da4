package handlers

import (
	"net/http"
)

func HandleHealthReady(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
}

// Liveness reports whether the store connection is alive.
func Liveness(check func() error) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if err := check(); err != nil {
			handleError(rw, r, err)
			return
		}
		handleJsonResponse(rw, http.StatusOK, map[string]string{"status": "ok"})
	})
}
