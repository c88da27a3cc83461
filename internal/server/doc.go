// Package server provides HTTP routing, middleware, and handlers for the token relay and the CLI login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally for path matching and filters methods itself,
// answering unknown paths with a JSON 404 and wrong methods with a JSON 405.
//
// # Relay Surface
//
// [NewRouter] wires the three API routes:
//   - POST /api/exchange-token runs the two-step exchange, guarded by [RateLimit]
//   - GET /api/health reports liveness
//   - GET /api/config echoes the public app id and redirect URI
//
// Every request passes through [RequestID], [Logger], [Recover] and [CORS].
//
// # Login Callback Handler
//
// [CallbackHandler] receives the provider's redirect during `tokenrelay login`.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code,
// and sends the result through a channel. It only processes one callback.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
