package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/desertthunder/tokenrelay/internal/services"
)

// anyMethod marks a route registered through [BasicRouter.Handler], which accepts every method.
const anyMethod = "*"

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for path matching. Method filtering and the
// JSON 404/405 responses are handled by the router itself.
type BasicRouter struct {
	mux         *http.ServeMux
	routes      map[string]map[string]http.Handler
	middlewares []Middleware
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		routes:      map[string]map[string]http.Handler{},
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware wraps the whole router, so it also runs for unknown routes and rejected methods.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// Several methods may share a path; other methods get a 405.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.register(strings.ToUpper(method), path, handler)
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler for every method.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.register(anyMethod, route, handler)
	}
}

func (r *BasicRouter) register(method, path string, handler http.Handler) {
	methods, ok := r.routes[path]
	if !ok {
		methods = map[string]http.Handler{}
		r.routes[path] = methods
		r.mux.Handle(path, r.dispatch(path))
	}
	methods[method] = handler
}

func (r *BasicRouter) dispatch(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		methods := r.routes[path]
		if h, ok := methods[req.Method]; ok {
			h.ServeHTTP(w, req)
			return
		}
		if h, ok := methods[anyMethod]; ok {
			h.ServeHTTP(w, req)
			return
		}

		allowed := make([]string, 0, len(methods))
		for m := range methods {
			allowed = append(allowed, m)
		}
		sort.Strings(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		writeJSON(w, http.StatusMethodNotAllowed, services.ErrorResponse{Error: "Method not allowed"})
	})
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Apply(http.HandlerFunc(r.route)).ServeHTTP(w, req)
}

func (r *BasicRouter) route(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		NotFound(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

// NotFound writes the JSON 404 body.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, services.ErrorResponse{Error: "Not found"})
}
