package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/smallbiznis/valora-offers/internal/config"
	"github.com/smallbiznis/valora-offers/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/valora-offers/internal/http/middleware"
	"github.com/smallbiznis/valora-offers/internal/middleware"
)

// Handlers groups the route handlers the router wires up.
type Handlers struct {
	Identity  *handler.IdentityHandler
	Clients   *handler.ClientHandler
	Templates *handler.TemplateHandler
	Offers    *handler.OfferHandler
	Allowlist *handler.AllowlistHandler
}

// NewRouter wires Gin routes and middleware. Everything except the health
// probe sits behind session authentication; role checks live in the services.
func NewRouter(cfg config.Config, handlers Handlers, auth *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", handler.Health)

	authed := r.Group("", auth.Authenticate)

	authed.GET("/auth/me", handlers.Identity.Me)

	clients := authed.Group("/clients")
	{
		clients.GET("", handlers.Clients.List)
		clients.POST("", handlers.Clients.Create)
		clients.POST("/import", handlers.Clients.Import)
		clients.GET("/:id", handlers.Clients.Get)
		clients.PATCH("/:id", handlers.Clients.Update)
		clients.DELETE("/:id", handlers.Clients.Delete)
	}

	templates := authed.Group("/templates")
	{
		templates.GET("", handlers.Templates.List)
		templates.POST("", handlers.Templates.Create)
		templates.GET("/:id", handlers.Templates.Get)
		templates.PATCH("/:id", handlers.Templates.Update)
		templates.DELETE("/:id", handlers.Templates.Delete)
	}

	offers := authed.Group("/offers")
	{
		offers.GET("", handlers.Offers.List)
		offers.POST("", handlers.Offers.Create)
		offers.GET("/:id", handlers.Offers.Get)
		offers.PATCH("/:id", handlers.Offers.Update)
		offers.DELETE("/:id", handlers.Offers.Delete)
		offers.POST("/:id/transition", handlers.Offers.Transition)
		offers.GET("/:id/pdf", handlers.Offers.RenderPDF)
	}

	allowlistGroup := authed.Group("/allowlist")
	{
		allowlistGroup.GET("", handlers.Allowlist.List)
		allowlistGroup.POST("", handlers.Allowlist.Create)
	}

	authed.POST("/provision/role", handlers.Allowlist.ProvisionRole)

	return r
}
