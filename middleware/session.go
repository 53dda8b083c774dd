// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/farmdesk/auth"
	"github.com/danielhkuo/farmdesk/sessions"
)

// SessionCookie names the signed session cookie
const SessionCookie = "farmdesk_session"

type sessionKey struct{}

// ContextWithSession returns ctx carrying sess
func ContextWithSession(ctx context.Context, sess *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session WithSession attached, or nil
func SessionFrom(ctx context.Context) *sessions.Session {
	sess, _ := ctx.Value(sessionKey{}).(*sessions.Session)
	return sess
}

// WithSession loads the caller's session from its signed cookie, starting a
// new one when the cookie is missing, forged or stale.
func WithSession(store *sessions.Store, secret string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := loadSession(r, store, secret)
			if sess == nil {
				var err error
				sess, err = store.Create(r.Context())
				if err != nil {
					slog.Error("failed to create session", "error", err)
					ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    auth.SignSessionID(sess.ID, secret),
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// ExpireSession tells the browser to drop its session cookie
func ExpireSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func loadSession(r *http.Request, store *sessions.Store, secret string) *sessions.Session {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	id, err := auth.VerifySessionCookie(c.Value, secret)
	if err != nil {
		slog.Warn("rejected session cookie", "remote", GetClientIP(r), "error", err)
		return nil
	}
	sess, err := store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sessions.ErrNotFound) {
			slog.Error("failed to load session", "error", err)
		}
		return nil
	}
	return sess
}
