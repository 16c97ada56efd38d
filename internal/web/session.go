package web

import (
	"net/http"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
)

// sessionCookie holds the session id.
const sessionCookie = "sweeper_session"

// sessionHeader lets API clients without cookies name their session.
const sessionHeader = "X-Session-ID"

// withSession attaches the caller's session to the request context. When
// create is true a missing or expired session is replaced by a new one;
// otherwise the request fails with a session-expired error.
func (s *Server) withSession(create bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := s.lookupSession(r)
			if err != nil {
				if !create {
					respondError(w, r, err, statusFor(err))
					return
				}
				if sess, err = s.service.NewSession(); err != nil {
					respondError(w, r, err, statusFor(err))
					return
				}
				logging.FromContext(r.Context()).Info("session created", "session_id", sess.ID)
			}
			s.setSessionCookie(w, sess)

			ctx := core.ContextWithSession(r.Context(), sess)
			ctx = logging.WithSessionID(ctx, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) lookupSession(r *http.Request) (*core.Session, error) {
	id := r.Header.Get(sessionHeader)
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	}
	if id == "" {
		return nil, core.ErrSessionNotFound
	}
	return s.service.Session(id)
}

// setSessionCookie (re)issues the cookie so its lifetime follows the
// session's sliding expiry.
func (s *Server) setSessionCookie(w http.ResponseWriter, sess *core.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFrom returns the session set by withSession.
func sessionFrom(r *http.Request) *core.Session {
	sess, _ := core.SessionFromContext(r.Context())
	return sess
}
