// Package ui implements an interactive terminal player using bubbletea's Elm architecture.
//
// The TUI works over a [library.Library] with three views:
//  1. [PlaylistListView] : Browse playlists, play one, or open the master list
//  2. [VideoListView] : Browse the videos of a playlist (or every video), toggle the selection,
//     reorder or remove entries, and create a playlist from the selection
//  3. [PlayerView] : Follow the queue with next/previous/ended/stop controls
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Synchronization events flow through a channel from the tasks.Synchronizer and show up in the status line.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
