package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/pkg/logger"
)

type ctxKey int

const userKey ctxKey = iota

// currentUser returns the authenticated user for this request,
// or nil for an anonymous one.
func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)

	return u
}

// identify resolves the session cookie or a bearer token to a user record
// and stores it in the request context. Requests with neither, or with a
// stale credential, proceed anonymously; each handler decides what
// anonymous callers may do.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var u models.User

		found := false

		if sessionID, ok := s.cookies.get(r); ok {
			if resolved, err := s.authService.AuthSession(r.Context(), sessionID); err == nil {
				u = resolved
				found = true
			}
		}

		if !found {
			if token, ok := bearerToken(r); ok {
				if resolved, err := s.authService.AuthToken(r.Context(), token); err == nil {
					u = resolved
					found = true
				}
			}
		}

		if found {
			r = r.WithContext(context.WithValue(r.Context(), userKey, &u))
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			_, err := rr.Body.WriteTo(w)
			if err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}
