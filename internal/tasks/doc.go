// Package tasks runs the background work of the client: keeping the remote store and the local
// mirror in step with the collection, and resolving video links in bulk.
//
// # Synchronization
//
// [Synchronizer.Load] prefers a non-empty remote collection, then the mirror, then an empty one.
// Remote failures never reach the caller; they are logged and the next source is tried.
//
// [Synchronizer.Schedule] writes the mirror immediately and arms a debounced full replace. Each
// call bumps a write generation; when the timer fires, a push whose generation has been
// superseded is dropped instead of sent. [Synchronizer.PushPlaylist] sends a merge for one
// playlist in the background. [Synchronizer.DeletePlaylist] is the only blocking remote call.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default to prevent blocking.
//
// # Bulk import
//
// [Importer] resolves links with a worker pool behind a rate limiter, keeping results in input order.
package tasks
