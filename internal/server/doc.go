// Package server provides HTTP routing, middleware, and the lifecycle of the web server.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [httprouter.Router] internally, giving method-aware routing with
// ":id" path parameters (read with [Param]) and plain 404/405 responses.
//
// # Middleware
//
// [RequestLogger] tags each request with a uuid (returned in the X-Request-ID header and available via
// [RequestID]) and logs method, path, status and duration. [Recoverer] turns handler panics into 500s.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which returns a list of [Route] values,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Server] wraps [http.Server] and shuts down gracefully when its context is canceled.
package server
