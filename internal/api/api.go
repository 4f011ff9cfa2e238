package api

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bookline-io/bookline/internal/auth"
	"github.com/bookline-io/bookline/internal/config"
	"github.com/bookline-io/bookline/internal/database"
	"github.com/bookline-io/bookline/internal/mail"
	"github.com/bookline-io/bookline/internal/notify"
	"github.com/bookline-io/bookline/internal/schedule"
	"github.com/bookline-io/bookline/internal/store"
	"github.com/bookline-io/bookline/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Api struct {
	Config    config.Config
	Router    *chi.Mux
	Store     *store.Store
	Tokens    *token.Service
	Auth      *auth.Service
	Schedules *schedule.Service

	db *sql.DB
}

// NewApi opens the database and wires every service behind the router
func NewApi(cfg config.Config) (*Api, error) {
	db, err := database.Open(&cfg)
	if err != nil {
		return nil, err
	}

	var notifier notify.Notifier
	if c := notify.NewFCMClient(&cfg); c != nil {
		notifier = c
	}
	var mailer mail.Mailer
	if m := mail.NewSMTPMailer(&cfg); m != nil {
		mailer = m
	}

	return newApi(cfg, db, notifier, mailer), nil
}

// newApi wires services onto an existing database connection
func newApi(cfg config.Config, db *sql.DB, notifier notify.Notifier, mailer mail.Mailer) *Api {
	st := store.New(db, cfg.Database.Type)
	tokens := token.NewService(st, &cfg)

	api := &Api{
		Config:    cfg,
		Router:    chi.NewRouter(),
		Store:     st,
		Tokens:    tokens,
		Auth:      auth.NewService(st, tokens, mailer),
		Schedules: schedule.NewService(st, notifier),
		db:        db,
	}
	api.setupRoutes()
	return api
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", api.RegisterHandler)
		r.Post("/auth/login", api.LoginHandler)
		r.Post("/auth/logout", api.LogoutHandler)
		r.Post("/auth/refresh-tokens", api.RefreshTokensHandler)
		r.Post("/auth/forgot-password", api.ForgotPasswordHandler)
		r.Post("/auth/reset-password", api.ResetPasswordHandler)
		r.Post("/auth/verify-email", api.VerifyEmailHandler)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(api.TokenAuthMiddleware)
			r.Post("/auth/send-verification-email", api.SendVerificationEmailHandler)
			r.Post("/schedule", api.AddScheduleHandler)
			r.Get("/schedule", api.GetScheduleHandler)
			r.Post("/device-token", api.AddUpdateDeviceTokenHandler)
		})
	})
}

// Serve starts the HTTP server and the periodic expired-token cleanup
func (api *Api) Serve() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			if err := api.Store.DeleteExpiredTokens(); err != nil {
				log.Printf("Error cleaning up expired tokens: %v", err)
			}
			<-ticker.C
		}
	}()

	log.Printf("Starting API server on 0.0.0.0:%d", api.Config.APIPort)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort), api.Router))
}

// Close closes the underlying database connection
func (api *Api) Close() error {
	if api.db != nil {
		return api.db.Close()
	}
	return nil
}
