package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"arttimeline/internal/artwork"
	"arttimeline/internal/auth"
	"arttimeline/internal/collection"
	"arttimeline/internal/config"
	"arttimeline/internal/httpx"
	"arttimeline/internal/metrics"
	"arttimeline/internal/timeline"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	metrics   *metrics.Metrics
	db        pinger
	blacklist httpx.BlacklistRepository

	artworks   *artwork.HTTPHandler
	timeline   *timeline.HTTPHandler
	auth       *auth.HTTPHandler
	collection *collection.HTTPHandler
}

func (a *app) routes(ctx context.Context) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := a.db.Ping(pingCtx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", a.metrics.Handler())

	// Artworks and timeline
	router.HandleFunc("GET /api/periods", a.timeline.ListPeriods)
	router.HandleFunc("GET /api/artworks/period/{periodId}", a.timeline.PeriodArtworks)
	router.HandleFunc("GET /api/artworks/{id}", a.artworks.Get)
	router.HandleFunc("GET /api/met/search", a.artworks.Search)

	// Auth flows; resend is limited to one mail per minute per client
	resend := httpx.PerMinute(ctx, 1)
	router.HandleFunc("POST /api/auth/register", a.auth.Register)
	router.HandleFunc("POST /api/auth/register/verify", a.auth.VerifyRegistration)
	router.Handle("POST /api/auth/register/resend", resend.Wrap(a.auth.ResendRegistration))
	router.HandleFunc("POST /api/auth/login", a.auth.Login)
	router.HandleFunc("POST /api/auth/2fa/verify", a.auth.VerifyTwoFactor)
	router.Handle("POST /api/auth/2fa/resend", resend.Wrap(a.auth.ResendTwoFactor))
	router.HandleFunc("POST /api/auth/password/forgot", a.auth.ForgotPassword)
	router.HandleFunc("POST /api/auth/password/verify", a.auth.VerifyPasswordReset)
	router.Handle("POST /api/auth/password/resend", resend.Wrap(a.auth.ResendPasswordReset))
	router.HandleFunc("POST /api/auth/password/reset", a.auth.ResetPassword)

	protected := httpx.AuthMiddleware(a.cfg.JWTSecret, a.blacklist)
	router.Handle("POST /api/auth/logout", protected(http.HandlerFunc(a.auth.Logout)))
	router.Handle("GET /api/me", protected(http.HandlerFunc(a.auth.Me)))
	router.Handle("PUT /api/me/two-factor", protected(http.HandlerFunc(a.auth.SetTwoFactor)))

	// Collection
	router.Handle("GET /api/collection", protected(http.HandlerFunc(a.collection.List)))
	router.Handle("POST /api/collection", protected(http.HandlerFunc(a.collection.Save)))
	router.Handle("DELETE /api/collection/{artworkId}", protected(http.HandlerFunc(a.collection.Remove)))
	router.Handle("GET /api/collection/check/{artworkId}", protected(http.HandlerFunc(a.collection.Check)))

	limiter := httpx.NewRateLimitMiddleware(ctx, a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(a.log, a.metrics),
		httpx.RecoveryMiddleware(a.log),
		httpx.SecurityHeadersMiddleware(a.cfg.EnableHSTS),
		httpx.CORSMiddleware(a.cfg.CORSAllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(a.cfg.MaxBodyBytes),
	)
}
