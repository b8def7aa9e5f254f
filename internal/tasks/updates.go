package tasks

import (
	"fmt"

	"github.com/desertthunder/vidshelf/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// SyncEvent reports one persistence attempt made by the [Synchronizer].
type SyncEvent struct {
	Phase      Phase
	Generation uint64 // Write generation the event belongs to; zero for non-debounced work
	Err        error
}

// Operation phase enumeration
type Phase int

const (
	LoadRemote Phase = iota
	LoadMirror
	SaveMirror
	PushReplace
	PushPlaylist
	DropSuperseded
	DeletePlaylist
	ResolveLinks
)

func (p Phase) String() string {
	switch p {
	case LoadRemote:
		return "load_remote"
	case LoadMirror:
		return "load_mirror"
	case SaveMirror:
		return "save_mirror"
	case PushReplace:
		return "push_replace"
	case PushPlaylist:
		return "push_playlist"
	case DropSuperseded:
		return "drop_superseded"
	case DeletePlaylist:
		return "delete_playlist"
	case ResolveLinks:
		return "resolve_links"
	default:
		return ""
	}
}

func resolvingLinksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveLinks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d links...", total),
	}
}

func resolvedLinkUpdate(step, total int, v models.Video) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveLinks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, v.Title),
		Data:    v,
	}
}

func failedLinkUpdate(step, total int, link string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveLinks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, link, err),
	}
}
