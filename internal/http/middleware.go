package httpx

import (
	"errors"
	"net/http"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/blog"
)

const CookieName = "session_id"

// withSession resolves the session cookie into the request context.
// Anonymous requests pass through untouched.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			if user, err2 := auth.UserFromSession(r.Context(), s.QB, c.Value); err2 == nil {
				r = r.WithContext(auth.WithUser(r.Context(), user))
			} else if !errors.Is(err2, auth.ErrNoSession) {
				s.Log.Warnw("session lookup failed", "error", err2)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFrom(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// viewerFrom maps the session user to the identity the query engine
// and the authorization gate reason about.
func viewerFrom(r *http.Request) blog.Viewer {
	if user, ok := auth.UserFrom(r.Context()); ok {
		return blog.Viewer{ID: user.ID, IsAdmin: user.IsAdmin}
	}
	return blog.Viewer{}
}

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		s.Log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Truncate(time.Millisecond),
		)
	})
}
