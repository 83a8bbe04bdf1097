// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/internal/middleware"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with the global middleware chain, the
// system routes and the /api/v1 client routes.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id feeds tracing and the context logger,
	// which the request logger, the rate limiter and handlers read.
	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, s, h)

	v1 := router.Group("/api/v1")
	registerClientRoutes(v1, h)

	return router
}

func registerClientRoutes(g *echo.Group, h *handler.Handlers) {
	clients := g.Group("/clients")

	clients.POST("", handler.Handle(h.Client.AddClient, http.StatusCreated))
	clients.GET("", handler.Handle(h.Client.FindClients, http.StatusOK))
	clients.GET("/find", handler.Handle(h.Client.FindClient, http.StatusOK))
	clients.GET("/:id", handler.Handle(h.Client.GetClient, http.StatusOK))
	clients.PATCH("/:id", handler.Handle(h.Client.UpdateClient, http.StatusOK))
	clients.DELETE("/:id", handler.HandleNoContent(h.Client.DeleteClient, http.StatusNoContent))

	clients.POST("/:id/phones", handler.Handle(h.Client.AddPhone, http.StatusCreated))
	clients.GET("/:id/phones", handler.Handle(h.Client.ListPhones, http.StatusOK))
	clients.DELETE("/:id/phones", handler.Handle(h.Client.DeletePhones, http.StatusOK))
}
