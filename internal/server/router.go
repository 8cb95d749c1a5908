package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [httprouter.Router] internally for routing, so paths may carry ":name" and "*name" parameters.
type BasicRouter struct {
	router      *httprouter.Router
	middlewares []Middleware
}

// NewBasicRouter creates a new [BasicRouter] instance.
//
// Unknown paths get a plain 404 and known paths with the wrong method get a plain 405.
func NewBasicRouter() *BasicRouter {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return &BasicRouter{
		router:      router,
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware wraps the whole router, so it also sees 404 and 405 responses.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.router.Handler(method, path, handler)
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Path, route.Handler)
	}
}

// ServeFiles serves files from root under path, which must end in "/*filepath".
func (r *BasicRouter) ServeFiles(path string, root http.FileSystem) {
	r.router.ServeFiles(path, root)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Apply(r.router).ServeHTTP(w, req)
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

// Param returns the value of the named path parameter, or "" when absent.
func Param(req *http.Request, name string) string {
	return httprouter.ParamsFromContext(req.Context()).ByName(name)
}
