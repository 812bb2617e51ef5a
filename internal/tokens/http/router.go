package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/service"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/pkg/httpx"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"

	_ "github.com/aussiebroadwan/tokenreg/api/tokenreg" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	Registry     *service.Registry
	TokenService *service.TokenService
	Verifier     *service.RequestVerifier

	// AdminKeyHash protects account management and issuance. When empty the
	// admin routes are only mounted with AllowInsecureAdmin.
	AdminKeyHash       string
	AllowInsecureAdmin bool

	RateLimits httpx.RateLimitProfiles

	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

func NewRouter(
	signer jwtx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		RateLimits:   httpx.DefaultRateLimitProfiles(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if admin, ok := r.adminGuard(); ok {
		r.registerAccounts(admin)
		r.registerIssuance(admin)
	} else {
		r.logger.Warn("ADMIN_KEY_HASH not set, account and issuance routes disabled")
	}
	r.registerClaims()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Token Registry API
//	@version		0.1.0
//	@description	Issues JWT access/refresh pairs for registered accounts and keeps the refresh tokens in a bounded per-account registry.
//	@description
//	@description				Access tokens carry kid "A<n>", refresh tokens "R<n>" where n is the storage id of the refresh token row.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tokenreg
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	AdminKey
//	@in							header
//	@name						X-Admin-Key
//	@description				Operator secret, verified against ADMIN_KEY_HASH.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT issued by this service. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// adminGuard returns the middleware for operator routes, or false when they
// must not be mounted at all.
func (r *Router) adminGuard() (httpx.Middleware, bool) {
	if r.AdminKeyHash != "" {
		return httpx.AdminKeyMiddleware(r.AdminKeyHash), true
	}
	if r.AllowInsecureAdmin {
		r.logger.Warn("admin routes mounted without authentication")
		return func(next http.Handler) http.Handler { return next }, true
	}
	return nil, false
}

func (r *Router) registerAccounts(admin httpx.Middleware) {
	h := &AccountsHandler{Registry: r.Registry}

	// Rate limit first so a flood never reaches argon2 verification.
	chain := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.RateLimitByIP(r.RateLimits.Admin),
			admin,
		)
	}

	r.Mux.Handle("POST /v1/accounts", chain(h.HandleCreate))
	r.Mux.Handle("GET /v1/accounts", chain(h.HandleList))
	r.Mux.Handle("GET /v1/accounts/{account}", chain(h.HandleGet))
	r.Mux.Handle("DELETE /v1/accounts/{account}", chain(h.HandleDelete))
}

func (r *Router) registerIssuance(admin httpx.Middleware) {
	h := &TokensHandler{TokenService: r.TokenService}

	// Issuance is limited per caller and per account so one busy account
	// cannot starve the others.
	r.Mux.Handle("POST /v1/accounts/{account}/tokens",
		httpx.Chain(http.HandlerFunc(h.HandleIssuePair),
			httpx.RateLimitByIPAndPathValue(r.RateLimits.Issue, "account"),
			admin,
		),
	)
	r.Mux.Handle("POST /v1/accounts/{account}/tokens/{nature}",
		httpx.Chain(http.HandlerFunc(h.HandleIssueToken),
			httpx.RateLimitByIPAndPathValue(r.RateLimits.Issue, "account"),
			admin,
		),
	)
}

func (r *Router) registerClaims() {
	r.Mux.Handle("GET /v1/claims",
		httpx.Chain(&ClaimsHandler{},
			httpx.RateLimitByIP(r.RateLimits.Public),
			httpx.AuthnMiddleware(r.Verifier),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}
