package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/papyri/archive/internal/identity"
	"github.com/sirupsen/logrus"
)

// requestTimeMiddleware logs every request with its handling time.
func requestTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.Infof("request time: %s %s: %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// authMiddleware resolves the bearer token into an actor on the request
// context. Requests without a token pass through; handlers that need an
// actor reject them individually.
func authMiddleware(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			actor, err := identity.ParseToken(secret, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid bearer token")
				return
			}
			r = r.WithContext(identity.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
