// Package models defines the collection entities shared by the client and the remote store.
//
// The package contains two categories of types:
//
// 1. Collection entities held in memory and in the local mirror
//   - [Video] : Metadata for a single video, identified by its external id
//   - [Playlist] : Named, ordered list of video ids
//   - [Snapshot] : Full collection state exchanged between layers
//
// 2. Wire types for the remote store contract
//   - [CollectionResponse] / [PlaylistView] : Body of GET /collection
//   - [WriteBody] / [PlaylistBody] / [VideoRef] : Body of PUT /collection
//   - [WriteRequest] : Decoded PUT body, either a [FullReplace] or a [PartialMerge]
//   - [WriteResult] / [DeleteResult] : Acknowledgements
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
