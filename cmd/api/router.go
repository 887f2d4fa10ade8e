package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/assistant-dashboard/internal/infra/http/handlers"
	"github.com/xavierca1/assistant-dashboard/internal/infra/http/middleware"
)

type routes struct {
	Leads         *handlers.LeadHandler
	Conversations *handlers.ConversationHandler
	Messages      *handlers.MessageHandler
	Drafts        *handlers.DraftHandler
	Refresh       *handlers.RefreshHandler
	Health        *handlers.HealthHandler
	DraftLimiter  *handlers.RateLimiter
	CORSOrigins   []string
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	limited := func(h http.HandlerFunc) http.Handler {
		if rt.DraftLimiter == nil {
			return h
		}
		return rt.DraftLimiter.Middleware(h)
	}

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/refresh", rt.Refresh.Handle)

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", rt.Leads.List)
		r.Post("/", rt.Leads.Create)
		r.Method(http.MethodPost, "/draft-follow-up", limited(rt.Drafts.FollowUp))
	})

	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", rt.Conversations.List)
		r.Put("/selected", rt.Conversations.Select)
		r.Get("/{leadID}/{channel}", rt.Conversations.Thread)
		r.Method(http.MethodPost, "/{leadID}/{channel}/draft", limited(rt.Drafts.Reply))
	})

	r.Post("/messages", rt.Messages.Send)

	return r
}
