// Package services holds the HTTP collaborators of the client.
//
// # Remote store
//
// [RemoteClient] implements [RemoteStore] against the collection contract served by the server
// package: GET for the whole collection, PUT for replace or merge writes, DELETE for one playlist.
// Requests go through [APIService], which keeps the raw status, headers and decoded JSON body.
// A non-2xx answer becomes [shared.ErrAPIRequest] carrying the body's "error" message; a body
// without both top-level arrays is [shared.ErrMalformedPayload].
//
// # Metadata
//
// [OEmbedFetcher] resolves watch, short, embed, shorts and live links (or bare ids) through the
// public oEmbed endpoint. Lookup failures degrade to [Placeholder] metadata so a video can always
// be added; only a link that names no video is an error.
package services
