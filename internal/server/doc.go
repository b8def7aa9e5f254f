// Package server provides HTTP routing, middleware and the collection handlers of the remote store.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally. Methods are checked inside each route
// so a wrong method gets a JSON 405 rather than the mux's plain-text one.
//
// # Collection Contract
//
// [CollectionHandler] serves the whole collection under a configurable endpoint (default /collection):
//
//	GET    /collection                → {videos, playlists}
//	PUT    /collection                → replace or merge, returns {ok, mode, skipped, videos, playlists}
//	DELETE /collection/playlists/{id} → {ok, deleted}
//	GET    /health                    → {status: "ok"}
//
// A PUT without a mode is an implicit replace; an implicit replace carrying nothing is skipped when the
// store already holds rows. Errors are JSON {error} bodies with a non-2xx status.
//
// # Middleware
//
// [Server] stacks request ids and panic recovery (chi middleware), CORS (go-chi/cors), per-IP rate
// limiting (go-chi/httprate) and request logging through the charmbracelet logger.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
