package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nightapp-server/internal/infra/redis"
	"nightapp-server/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger is the health probe the server runs against a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config carries everything the HTTP layer needs. Nil use cases are allowed
// in tests; their routes just 500 when hit.
type Config struct {
	Users      usecase.UserUseCase
	Visits     usecase.VisitUseCase
	Activities usecase.ActivityUseCase
	QRCodes    usecase.QRCodeUseCase
	Ledger     usecase.LedgerUseCase
	Rewards    usecase.RewardUseCase
	Feedback   usecase.FeedbackUseCase
	Stats      usecase.StatsUseCase

	Auth     *AuthManager
	Limiter  *redis.RateLimiter
	AdminKey string

	RequestTimeout    time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration

	DB    Pinger
	Cache Pinger
}

type Server struct {
	cfg Config
	log *zerolog.Logger
	srv *http.Server
}

func NewServer(cfg Config, logger *zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Server{cfg: cfg, log: logger}
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(s.log),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(s.cfg.RequestTimeout),
	)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", loginHandler(s.cfg.AdminKey, s.cfg.Auth))
		api.Post("/auth/logout", logoutHandler(s.cfg.Auth))
		api.With(RateLimit(s.cfg.Limiter, s.cfg.RateLimitRequests, s.cfg.RateLimitWindow, "register", s.log)).
			Post("/users/register", registerHandler(s.cfg.Users, s.cfg.Auth))

		api.Group(func(authed chi.Router) {
			authed.Use(RequireAuth(s.cfg.Auth))

			authed.Post("/visits/accept", acceptVisitHandler(s.cfg.Visits))
			authed.Get("/activities", activitiesListHandler(s.cfg.Activities))
			authed.Get("/rewards", rewardsListHandler(s.cfg.Rewards))
			authed.Post("/rewards/{id}/redeem", rewardRedeemHandler(s.cfg.Rewards))
			authed.Post("/feedback", feedbackSubmitHandler(s.cfg.Feedback))

			authed.Get("/me", meHandler(s.cfg.Users))
			authed.Get("/me/visits", myVisitsHandler(s.cfg.Visits))
			authed.Get("/me/ledger", myLedgerHandler(s.cfg.Ledger))
			authed.Get("/me/qrcodes", myCodesHandler(s.cfg.QRCodes))
			authed.Get("/me/redemptions", myRedemptionsHandler(s.cfg.Rewards))

			authed.Group(func(admin chi.Router) {
				admin.Use(RequireAdmin())

				admin.Get("/users", usersListHandler(s.cfg.Users))
				admin.Get("/users/{id}", userGetHandler(s.cfg.Users, s.cfg.Visits))
				admin.Post("/activities", activitiesCreateHandler(s.cfg.Activities))
				admin.Patch("/activities/{id}/active", activitySetActiveHandler(s.cfg.Activities))
				admin.Post("/qrcodes", qrIssueHandler(s.cfg.QRCodes))
				admin.Delete("/qrcodes/{id}", qrRevokeHandler(s.cfg.QRCodes))
				admin.Post("/rewards", rewardsCreateHandler(s.cfg.Rewards))
				admin.Patch("/rewards/{id}/active", rewardSetActiveHandler(s.cfg.Rewards))
				admin.Get("/feedback/recent", feedbackRecentHandler(s.cfg.Feedback))
				admin.Get("/stats", statsHandler(s.cfg.Stats))
			})
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, p := range map[string]Pinger{"postgres": s.cfg.DB, "redis": s.cfg.Cache} {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			s.log.Error().Err(err).Str("store", name).Msg("health check failed")
			http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(port int, readTimeout, writeTimeout time.Duration) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
