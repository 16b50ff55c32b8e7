package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/threadly-dev/threadly/backend/internal/cache"
	"github.com/threadly-dev/threadly/backend/internal/setup"
	"github.com/threadly-dev/threadly/shared/api"
	mw "github.com/threadly-dev/threadly/shared/middleware"
	"github.com/threadly-dev/threadly/shared/middleware/metrics"
	rl "github.com/threadly-dev/threadly/shared/middleware/ratelimiter"
)

// maxBodySize bounds JSON request bodies. Thread text is the largest field.
const maxBodySize = 256 << 10

// New creates and configures a chi router with all the routes.
// IMPORTANT! a limiter passed to Use is shared by every route of that group
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimw.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// JSON only, nothing here loads scripts or frames
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureHeaders))

	h := deps.Handler

	// Probes and scraping stay outside auth and rate limits
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	views := cache.Middleware(deps.ViewCache)
	writes := mw.RateLimit(rl.Writes(), mw.GetCallerKey)         // 1 per 3 seconds per user, bursts of 5
	deletes := mw.RateLimit(rl.OnceInSecond(), mw.GetCallerKey) // 1 per second per user

	r.Route(api.Prefix, func(v1 chi.Router) {
		v1.Use(mw.GlobalRateLimit(rl.Rps1000()))     // 1000 global RPS
		v1.Use(mw.RateLimit(rl.Rps100(), mw.GetIP)) // 100 RPS by IP, before tokens are checked
		v1.Use(mw.RequireJSON) // session cookies ride along on cross-site simple requests
		v1.Use(deps.AuthMiddleware.NeedAuth())
		v1.Use(mw.RateLimit(rl.Rps10(), mw.GetCallerKey)) // 10 RPS per user
		v1.Use(chimw.RequestSize(maxBodySize))

		v1.Route("/users", func(users chi.Router) {
			users.Get("/", h.ListUsers)
			users.Get("/me", h.GetMe)
			users.With(writes).Put("/me", h.UpsertMe)
			users.Get("/{userId}", h.GetUser)
			users.With(views).Get("/{userId}/threads", h.ListUserThreads)
		})

		v1.Route("/communities", func(communities chi.Router) {
			communities.Get("/", h.ListCommunities)
			communities.With(writes).Post("/", h.CreateCommunity)
			communities.Get("/{communityId}", h.GetCommunity)
			communities.With(views).Get("/{communityId}/threads", h.ListCommunityThreads)
			communities.With(writes).Post("/{communityId}/members", h.JoinCommunity)
			communities.With(deletes).Delete("/{communityId}/members", h.LeaveCommunity)
		})

		v1.Route("/threads", func(threads chi.Router) {
			threads.With(views).Get("/", h.ListThreads)
			threads.With(writes).Post("/", h.CreateThread)
			threads.With(views).Get("/{threadId}", h.GetThread)
			threads.With(writes).Post("/{threadId}/replies", h.CreateReply)
			threads.With(deletes).Delete("/{threadId}", h.DeleteThread)
		})

		v1.Get("/activity", h.GetActivity)
	})

	return r
}
