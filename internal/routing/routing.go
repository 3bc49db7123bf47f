package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/audit"
	"hospitaladmin/pkg/handlers"
	"hospitaladmin/pkg/middleware"
	"hospitaladmin/pkg/policy"
	"hospitaladmin/pkg/session"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Accounts      *account.Registry
	Policy        *policy.Policy
	Revocations   session.RevocationStore
	Audit         audit.Recorder
	Logger        *slog.Logger
	SessionSecret []byte
	Secure        bool
	StaticDir     string
	Throttle      middleware.ThrottleConfig
	Now           func() time.Time
}

// NewHandler builds the router and wraps it so the auth gate sees every
// request, including ones no route matches.
func NewHandler(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Audit == nil {
		d.Audit = audit.NopRecorder{}
	}

	codec := session.NewCodec(d.SessionSecret, d.Now)
	resolver := &session.Resolver{
		Codec:       codec,
		Validator:   session.NewValidator(d.Accounts),
		Revocations: d.Revocations,
		Now:         d.Now,
	}

	authHandler := &handlers.AuthHandler{
		Accounts:    d.Accounts,
		Codec:       codec,
		Resolver:    resolver,
		Revocations: d.Revocations,
		Audit:       d.Audit,
		Logger:      d.Logger,
		Secure:      d.Secure,
	}
	moduleHandler := &handlers.ModuleHandler{
		Resolver: resolver,
		Policy:   d.Policy,
		Audit:    d.Audit,
		Logger:   d.Logger,
	}

	r := mux.NewRouter()
	InitRoutes(r, authHandler, moduleHandler, d)

	var h http.Handler = r
	h = middleware.CheckSession(resolver, d.Policy, d.Logger, d.Secure)(h)
	h = middleware.Panic(d.Logger)(h)
	h = middleware.AccessLog(d.Logger)(h)
	return h
}

func InitRoutes(r *mux.Router, authHandler *handlers.AuthHandler, moduleHandler *handlers.ModuleHandler, d Deps) {
	htmlDir := filepath.Join(d.StaticDir, "html")
	throttle := middleware.Throttle(d.Throttle, d.Logger, authHandler.RecordThrottled)

	r.HandleFunc("/healthz", handlers.Healthz).Methods("GET")

	/* auth routers */
	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Handle("/login", throttle(http.HandlerFunc(authHandler.Login))).Methods("POST").Name("login")
	authRouter.HandleFunc("/logout", authHandler.Logout).Methods("POST").Name("logout")
	authRouter.HandleFunc("/session", authHandler.Session).Methods("GET").Name("session")

	/* admin routers */
	r.HandleFunc("/api/admin/audit", moduleHandler.AuditLog).Methods("GET")

	/* pages */
	r.HandleFunc(policy.RootPath, moduleHandler.Root).Methods("GET")
	r.HandleFunc(policy.LoginPath, moduleHandler.LoginPage(filepath.Join(htmlDir, "login.html"))).Methods("GET")
	r.HandleFunc(policy.UnauthorizedPath, handlers.StaticPage(filepath.Join(htmlDir, "unauthorized.html"))).Methods("GET")

	/* module routers */
	for _, module := range handlers.Modules {
		r.PathPrefix("/api/" + module).Handler(moduleHandler.Module(module))
		r.PathPrefix("/" + module).Handler(moduleHandler.Module(module))
	}

	ServeStaticFiles(r, d.StaticDir)
}

func ServeStaticFiles(r *mux.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))
}

// StartServer serves until ctx is cancelled and then drains connections.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
