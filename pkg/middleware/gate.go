package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"hospitaladmin/pkg/policy"
	"hospitaladmin/pkg/session"
)

const (
	returnToParam         = "returnTo"
	apiPrefix             = "/api/"
	errorNotAuthenticated = "not authenticated"
	errorForbidden        = "forbidden"
)

var (
	publicPaths = map[string]struct{}{
		policy.LoginPath:        {},
		policy.UnauthorizedPath: {},
		"/healthz":              {},
	}
	publicPrefixes = []string{"/static/", "/api/auth/"}
)

// IsPublic reports paths the gate lets through without looking at the
// session cookie.
func IsPublic(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// CheckSession is the single enforcement point in front of every dashboard
// and module API route. Pages are redirected; /api/ paths get JSON errors.
func CheckSession(resolver *session.Resolver, pol *policy.Policy, logger *slog.Logger, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if IsPublic(path) {
				next.ServeHTTP(w, r)
				return
			}

			s, err := resolver.Resolve(r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					logger.Warn("invalid session", "path", path, "error", err)
					http.SetCookie(w, session.ClearCookie(secure))
				}
				denyUnauthenticated(w, r)
				return
			}

			if !pol.Authorized(s.Account.Role, path) {
				logger.Info("route denied", "path", path, "user", s.Account.ID, "role", s.Account.Role)
				denyUnauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}

// LoginURL builds the login redirect that carries the original path back.
func LoginURL(path string) string {
	return policy.LoginPath + "?" + url.Values{returnToParam: {path}}.Encode()
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, apiPrefix) {
		writeError(w, http.StatusUnauthorized, errorNotAuthenticated)
		return
	}
	http.Redirect(w, r, LoginURL(r.URL.Path), http.StatusSeeOther)
}

func denyUnauthorized(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, apiPrefix) {
		writeError(w, http.StatusForbidden, errorForbidden)
		return
	}
	http.Redirect(w, r, policy.UnauthorizedPath, http.StatusSeeOther)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		return
	}
}
