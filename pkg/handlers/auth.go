package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/audit"
	"hospitaladmin/pkg/middleware"
	"hospitaladmin/pkg/session"
)

var ErrMissingCredentials = errors.New("username and password are required")

const msgNotAuthenticated = "not authenticated"

type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Accounts    account.Authenticator
	Codec       *session.Codec
	Resolver    *session.Resolver
	Revocations session.RevocationStore
	Audit       audit.Recorder
	Logger      *slog.Logger
	Secure      bool
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, typeError, ErrMissingCredentials.Error())
		return
	}

	acc, err := h.Accounts.Authenticate(username, req.Password)
	if err != nil {
		h.record(r, audit.LoginFailed, account.NormalizeUsername(username), "")
		if ok := WriteResp(w, h.Logger, map[string]any{"error": account.ErrInvalidCredentials.Error()}, http.StatusUnauthorized); ok {
			h.Logger.Info("login", "error", "unauthorized", "username", account.NormalizeUsername(username))
		}
		return
	}

	token, _, err := h.Codec.Encode(acc)
	if err != nil {
		h.Logger.Error("session encode", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, "failed to create session")
		return
	}

	http.SetCookie(w, session.NewCookie(token, h.Secure))
	h.record(r, audit.LoginSucceeded, acc.Username, acc.ID)

	if ok := WriteResp(w, h.Logger, map[string]any{"success": true, "user": acc}, http.StatusOK); ok {
		h.Logger.Info("login", "user", acc.ID, "role", acc.Role)
	}
}

// Logout is idempotent. A decodable cookie has its token id put on the
// deny-list until the token would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if cl, err := h.Codec.Decode(cookie.Value); err == nil {
			if h.Revocations != nil {
				if err := h.Revocations.Revoke(r.Context(), cl.Id, session.ExpiresAt(cl)); err != nil {
					h.Logger.Error("revoke session", "error", err, "user", cl.AccountID)
				}
			}
			h.record(r, audit.Logout, cl.Username, cl.AccountID)
		}
	}

	http.SetCookie(w, session.ClearCookie(h.Secure))
	WriteResp(w, h.Logger, map[string]any{"success": true}, http.StatusOK)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, err := h.Resolver.Resolve(r)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			http.SetCookie(w, session.ClearCookie(h.Secure))
		}
		writeError(w, http.StatusUnauthorized, typeError, msgNotAuthenticated)
		return
	}

	WriteResp(w, h.Logger, map[string]any{"user": s.Account}, http.StatusOK)
}

// RecordThrottled is handed to the login throttle.
func (h *AuthHandler) RecordThrottled(r *http.Request) {
	h.record(r, audit.LoginThrottled, "", "")
}

func (h *AuthHandler) record(r *http.Request, typ audit.EventType, username, accountID string) {
	if h.Audit == nil {
		return
	}
	event := &audit.Event{
		Type:       typ,
		Username:   username,
		AccountID:  accountID,
		RemoteAddr: r.RemoteAddr,
		RequestID:  middleware.RequestID(r.Context()),
	}
	if err := h.Audit.Record(context.WithoutCancel(r.Context()), event); err != nil {
		h.Logger.Error("audit record", "error", err, "type", typ)
	}
}
