// Package router dispatches gateway routes. It normalizes host requests into
// the AuthRequest abstraction, guarantees at most one handler per route, and
// serializes exactly one response per dispatch so the host transport can never
// emit a second, conflicting one.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"openid-gateway/internal/platform/metrics"
)

// Prefix groups every route the gateway exposes. Part of the public route
// contract; changing it is a breaking change for registered clients.
const Prefix = "openid-connect"

// Handler executes one gateway route. It fills the response; it must not
// write to the host transport itself.
type Handler interface {
	Handle(ctx context.Context, req *AuthRequest, resp *Response)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *AuthRequest, resp *Response)

func (f HandlerFunc) Handle(ctx context.Context, req *AuthRequest, resp *Response) {
	f(ctx, req, resp)
}

type registration struct {
	handler Handler
	methods []string
}

// Router owns the route table. Registration happens once at startup; the
// table is read-only during serving, so dispatch needs no locking.
type Router struct {
	issuer  string
	routes  map[string]registration
	order   []string
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(issuer string, logger *slog.Logger, m *metrics.Metrics) *Router {
	return &Router{
		issuer:  strings.TrimSuffix(issuer, "/"),
		routes:  make(map[string]registration),
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("openid-gateway/router"),
	}
}

// RestURL builds the absolute URL for a gateway route. Handlers use it for
// redirect and form targets.
func (rt *Router) RestURL(route string) string {
	return rt.issuer + "/" + Prefix + "/" + route
}

// Register associates a route name with a handler and its allowed methods.
// The first registration for a name wins; later ones are silently ignored so
// repeated initialization stays idempotent. Defaults to GET when no methods
// are given.
func (rt *Router) Register(route string, handler Handler, methods ...string) {
	key := Prefix + "/" + route
	if _, exists := rt.routes[key]; exists {
		return
	}
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}
	rt.routes[key] = registration{handler: handler, methods: methods}
	rt.order = append(rt.order, route)
}

// Mount exposes every registered route on the host chi transport. The host
// enforces method matching before Dispatch runs. Dispatch owns the whole
// prefix: anything under it that misses the route table falls through to
// Dispatch's bodyless 404 instead of the host's default not-found page.
func (rt *Router) Mount(r chi.Router) {
	r.Route("/"+Prefix, func(sr chi.Router) {
		sr.NotFound(rt.Dispatch)
		for _, route := range rt.order {
			reg := rt.routes[Prefix+"/"+route]
			for _, method := range reg.methods {
				sr.Method(method, "/"+route, http.HandlerFunc(rt.Dispatch))
			}
		}
	})
}

// Dispatch normalizes the host request, finds the registered handler, runs
// it, and sends its response. After the send, control returns straight to the
// transport's per-request boundary: no default handling may follow. Unknown
// routes get a bodyless 404.
func (rt *Router) Dispatch(w http.ResponseWriter, r *http.Request) {
	route := strings.TrimLeft(r.URL.Path, "/")

	ctx, span := rt.tracer.Start(r.Context(), "router.Dispatch",
		trace.WithAttributes(attribute.String("route", route)))
	defer span.End()

	reg, ok := rt.routes[route]
	if !ok {
		span.SetAttributes(attribute.Int("http.status_code", http.StatusNotFound))
		rt.metrics.ObserveDispatch(route, http.StatusNotFound)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	req := NewAuthRequest(r)
	resp := NewResponse()
	reg.handler.Handle(ctx, req, resp)

	span.SetAttributes(attribute.Int("http.status_code", resp.Status()))
	rt.metrics.ObserveDispatch(route, resp.Status())
	rt.logger.InfoContext(ctx, "dispatched route",
		"route", route,
		"status", strconv.Itoa(resp.Status()),
	)

	resp.write(w)
}
