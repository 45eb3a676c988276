package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultCookieName = "ubermelon_session"

type ctxKey string

const sessionIDKey ctxKey = "session_id"

func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func IDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok && v != ""
}

type Cookies struct {
	Signer *Signer
	Name   string
	Secure bool
	Log    *zap.Logger
}

// Middleware resolves the session id from the signed cookie. A missing,
// tampered or expired cookie starts a new, empty session. A stale cookie is
// reissued for the same session, so activity keeps the session alive.
func (c *Cookies) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, stale := c.fromRequest(r)

		switch {
		case sid == "":
			sid = uuid.NewString()
			if err := c.issue(w, sid); err != nil {
				if c.Log != nil {
					c.Log.Error("start session failed", zap.Error(err))
				}
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
		case stale:
			// the current cookie is still valid, so a failed refresh is not fatal
			if err := c.issue(w, sid); err != nil && c.Log != nil {
				c.Log.Warn("refresh session cookie failed", zap.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
	})
}

func (c *Cookies) cookieName() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c *Cookies) fromRequest(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.cookieName())
	if err != nil || ck.Value == "" {
		return "", false
	}

	claims, err := c.Signer.Verify(ck.Value)
	if err != nil {
		return "", false
	}
	return claims.SessionID, c.Signer.Stale(claims)
}

func (c *Cookies) issue(w http.ResponseWriter, sid string) error {
	tok, err := c.Signer.Issue(sid)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName(),
		Value:    tok,
		Path:     "/",
		MaxAge:   int(c.Signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
