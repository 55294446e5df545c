package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/common"
)

// CookieOptions scopes the session cookies. Both cookies are always HttpOnly.
type CookieOptions struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteStrictMode
	}
	return o
}

func setCookie(w http.ResponseWriter, name, value string, ttl time.Duration, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

func clearCookie(w http.ResponseWriter, name string, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

func (h *handler) setAccessCookie(w http.ResponseWriter, token string) {
	setCookie(w, common.AccessTokenCookieName, token, h.accessTTL, h.cookies)
}

func (h *handler) setRefreshCookie(w http.ResponseWriter, token string) {
	setCookie(w, common.RefreshTokenCookieName, token, h.refreshTTL, h.cookies)
}

func (h *handler) clearSessionCookies(w http.ResponseWriter) {
	clearCookie(w, common.AccessTokenCookieName, h.cookies)
	clearCookie(w, common.RefreshTokenCookieName, h.cookies)
}
