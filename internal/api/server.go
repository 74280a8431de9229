package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"doorman/internal/auth"
	"doorman/internal/user"
	"doorman/pkg/jwt"
)

const requestsPerSecond = 10

// Server owns the router and the HTTP lifecycle. Handlers are injected; the
// server only decides which routes exist and which middleware guards them.
type Server struct {
	router *mux.Router
	http   *http.Server
	log    *slog.Logger
}

func NewServer(
	authHandler *auth.Handler,
	userHandler *user.JSONHandler,
	bearer *jwt.JWT,
	log *slog.Logger,
) *Server {
	router := mux.NewRouter()
	router.Use(Logging(log))
	router.Use(RateLimit(requestsPerSecond))

	s := &Server{router: router, log: log}
	s.setupRoutes(authHandler, userHandler, bearer)
	return s
}

func (s *Server) setupRoutes(authHandler *auth.Handler, userHandler *user.JSONHandler, bearer *jwt.JWT) {
	requireBearer := auth.RequireBearer(bearer)

	s.router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/", authHandler.Index).Methods(http.MethodGet)

	s.router.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	s.router.HandleFunc("/verify/{username}", authHandler.VerifyForm).Methods(http.MethodGet)
	s.router.HandleFunc("/verify/{username}", authHandler.SubmitEmail).Methods(http.MethodPost)
	s.router.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	s.router.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// The shortcode submission rides the session cookie alone; a bearer is
	// only minted once the challenge succeeds.
	s.router.HandleFunc("/authorize/post/{username}", authHandler.SubmitShortcode).Methods(http.MethodPost)

	guard := func(h http.HandlerFunc) http.Handler { return requireBearer(h) }
	s.router.Handle("/send-onboard-email/{username}", guard(authHandler.SendOnboard)).Methods(http.MethodGet)
	s.router.Handle("/send-code-auth/{username}", guard(authHandler.DispatchChallenge)).Methods(http.MethodGet)
	s.router.Handle("/authorize/{username}", guard(authHandler.Authorize)).Methods(http.MethodGet)

	admin := s.router.PathPrefix("/users").Subrouter()
	admin.Use(requireBearer)
	admin.HandleFunc("", userHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/id/{id}", userHandler.GetUser).Methods(http.MethodGet)
	admin.HandleFunc("/{username}", userHandler.GetUserByName).Methods(http.MethodGet)

	// Mailed auth links resolve here. Registered last so every named route
	// above wins over the two-segment catch-all.
	s.router.HandleFunc("/{username}/{route}", authHandler.VisitAuthLink).Methods(http.MethodGet)
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Info("http server listening", "addr", addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
