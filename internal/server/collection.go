package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes bounds the size of a PUT body.
const MaxBodyBytes = 8 << 20

// Store is the storage the collection handler serves. repositories.CollectionStore implements it.
type Store interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Apply(ctx context.Context, req models.WriteRequest) (models.WriteResult, error)
	DeletePlaylist(ctx context.Context, id string) (bool, error)
}

// CollectionHandler serves the collection endpoint and its playlist sub-resource.
type CollectionHandler struct {
	store    Store
	endpoint string
	logger   *log.Logger
}

// NewCollectionHandler creates a handler mounted at endpoint (e.g. /collection).
func NewCollectionHandler(store Store, endpoint string, logger *log.Logger) *CollectionHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CollectionHandler{
		store:    store,
		endpoint: "/" + strings.Trim(endpoint, "/"),
		logger:   logger,
	}
}

// Routes returns the collection path and the playlist delete path.
func (h *CollectionHandler) Routes() []string {
	return []string{h.endpoint, h.endpoint + "/playlists/{id}"}
}

// ServeHTTP dispatches on path and method.
func (h *CollectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if id := r.PathValue("id"); id != "" {
		if r.Method != http.MethodDelete {
			MethodNotAllowed(w, http.MethodDelete)
			return
		}
		h.deletePlaylist(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		MethodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (h *CollectionHandler) get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.Load(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, models.NewCollectionResponse(snapshot))
}

func (h *CollectionHandler) put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req, err := models.DecodeWriteRequest(body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.store.Apply(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("collection written",
		"mode", result.Mode, "skipped", result.Skipped,
		"videos", result.Videos, "playlists", result.Playlists,
		"request_id", middleware.GetReqID(r.Context()))
	WriteJSON(w, http.StatusOK, result)
}

func (h *CollectionHandler) deletePlaylist(w http.ResponseWriter, r *http.Request, id string) {
	deleted, err := h.store.DeletePlaylist(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, models.DeleteResult{OK: true, Deleted: deleted})
}

// fail maps store errors: bad input is the client's fault, anything else is a storage failure.
func (h *CollectionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrInvalidInput) || errors.Is(err, shared.ErrMalformedPayload) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("storage failure", "path", r.URL.Path, "error", err, "request_id", middleware.GetReqID(r.Context()))
	WriteError(w, http.StatusInternalServerError, "storage failure")
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, Envelope{"status": "ok"})
}
