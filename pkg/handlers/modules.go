package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"hospitaladmin/pkg/audit"
	"hospitaladmin/pkg/policy"
	"hospitaladmin/pkg/session"
)

const (
	dashboardPath     = "/dashboard"
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// Modules lists the dashboard sections served behind the gate.
var Modules = []string{"dashboard", "patients", "appointments", "hr", "finance", "inventory", "insurance"}

type ModuleHandler struct {
	Resolver *session.Resolver
	Policy   *policy.Policy
	Audit    audit.Recorder
	Logger   *slog.Logger
}

// authorize takes the session the gate left in the context and resolves
// the cookie itself when there is none, so a handler mounted without the
// gate still refuses the request. The policy is checked either way.
func (h *ModuleHandler) authorize(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		var err error
		if s, err = h.Resolver.Resolve(r); err != nil {
			writeError(w, http.StatusUnauthorized, typeError, msgNotAuthenticated)
			return nil, false
		}
	}
	if !h.Policy.Authorized(s.Account.Role, r.URL.Path) {
		writeError(w, http.StatusForbidden, typeError, "forbidden")
		return nil, false
	}
	return s, true
}

func (h *ModuleHandler) Module(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.authorize(w, r)
		if !ok {
			return
		}
		WriteResp(w, h.Logger, map[string]any{
			"module": name,
			"path":   r.URL.Path,
			"user":   s.Account,
		}, http.StatusOK)
	}
}

// Root sends signed-in users to the dashboard.
func (h *ModuleHandler) Root(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Resolver.Resolve(r); err != nil {
		http.Redirect(w, r, policy.LoginPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// LoginPage redirects an already signed-in user to a local returnTo target
// and otherwise serves the static login page.
func (h *ModuleHandler) LoginPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s, err := h.Resolver.Resolve(r); err == nil {
			target := SafeReturnTo(r.URL.Query().Get("returnTo"))
			if !h.Policy.Authorized(s.Account.Role, target) {
				target = dashboardPath
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		http.ServeFile(w, r, page)
	}
}

func StaticPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, page)
	}
}

// AuditLog lists recent authentication events. Only the super role reaches
// /api/admin through the policy.
func (h *ModuleHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	limit := int64(defaultAuditLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, typeError, "invalid limit")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	events, err := h.Audit.Recent(r.Context(), limit)
	if err != nil {
		h.Logger.Error("audit recent", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, "failed to load audit events")
		return
	}

	WriteResp(w, h.Logger, map[string]any{"events": events}, http.StatusOK)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonContent)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// SafeReturnTo keeps redirects on this host. Browsers drop tabs and
// newlines inside URLs and read a backslash as a slash.
func SafeReturnTo(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.ContainsFunc(target, unsafeRedirectRune) {
		return dashboardPath
	}
	return target
}

func unsafeRedirectRune(r rune) bool {
	return r == '\\' || unicode.IsControl(r) || unicode.IsSpace(r)
}
