package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/sedanonpc/ddcore/internal/handler/chat"
	realtimeHandler "github.com/sedanonpc/ddcore/internal/handler/realtime"
	middlewarePkg "github.com/sedanonpc/ddcore/internal/middleware"
	"github.com/sedanonpc/ddcore/internal/service/gateway"
	realtimeService "github.com/sedanonpc/ddcore/internal/service/realtime"
	"github.com/sedanonpc/ddcore/internal/service/session"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(gw *gateway.Gateway, store *session.Store, backend chatHandler.Backend, hub *realtimeService.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler.New(gw, store, backend).RegisterRoutes(r)
	realtimeHandler.New(hub).RegisterRoutes(r)

	return r
}
