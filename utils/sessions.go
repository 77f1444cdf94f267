package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"authdemo/models"
)

const (
	SessionCookieName = "session"

	// Cookie lifetimes in seconds
	RememberMeMaxAge = 60 * 60 * 24 * 30
	SessionMaxAge    = 60 * 60 * 24
)

var ErrNoSession = errors.New("no session cookie")

func CookieExists(r *http.Request, name string) bool {
	st, err := r.Cookie(name)
	return err == nil && st.Value != ""
}

// GetUserAgent returns the User-Agent string from the request
func GetUserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// GetIP returns the host part of RemoteAddr, the peer the server actually talked to.
func GetIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP is GetIP, except that behind a trusted reverse proxy the first
// X-Forwarded-For hop wins. Without a proxy in front that header is client input.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return GetIP(r)
}

// SessionMaxAgeFor picks the cookie lifetime for a login.
func SessionMaxAgeFor(rememberMe bool) int {
	if rememberMe {
		return RememberMeMaxAge
	}
	return SessionMaxAge
}

func SetSessionCookie(w http.ResponseWriter, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie. The value itself
// stays usable by anyone holding a copy until it expires.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ReadSession decodes the identity from the request's session cookie.
func ReadSession(r *http.Request, codec SessionCodec) (*models.Identity, error) {
	if !CookieExists(r, SessionCookieName) {
		return nil, ErrNoSession
	}
	st, _ := r.Cookie(SessionCookieName)
	return codec.Decode(st.Value)
}

type identityContextKey struct{}

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*models.Identity)
	return identity, ok && identity != nil
}
