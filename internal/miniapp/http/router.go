package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/service"
	"github.com/swapline/miniapp/internal/miniapp/store"
	"github.com/swapline/miniapp/pkg/httpx"
	"github.com/swapline/miniapp/pkg/slogx"

	_ "github.com/swapline/miniapp/api/miniapp" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService
	LeadService *service.LeadService
	Gate        *service.SessionGate
	Cookies     CookiePolicy
}

func NewRouter(st store.Store, logger *slog.Logger, buildVersion string) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerLeads()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			Mini App Backend API
//	@version		0.1.0
//	@description	Backend for the Swapline Telegram Mini App: Telegram WebApp
//	@description	authentication with JWT session tokens, and exchange lead intake.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{AuthService: r.AuthService, Cookies: r.Cookies}
	refreshHandler := &RefreshHandler{AuthService: r.AuthService, Cookies: r.Cookies}

	// Both endpoints accept unauthenticated traffic and do signature work,
	// so they get the strict per-IP limit.
	r.Mux.Handle("POST /v1/auth/telegram-webapp",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMe() {
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(&MeHandler{},
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerLeads() {
	createHandler := &LeadCreateHandler{LeadService: r.LeadService}
	listHandler := &LeadListHandler{LeadService: r.LeadService}

	r.Mux.Handle("POST /v1/leads",
		httpx.Chain(createHandler,
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/leads",
		httpx.Chain(listHandler,
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
