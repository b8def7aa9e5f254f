package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/vidshelf/internal/shared"
)

const (
	ModeReplace = "replace"
	ModeMerge   = "merge"
)

// PlaylistView is a playlist as returned by GET /collection, with its videos expanded in order.
type PlaylistView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Videos      []Video   `json:"videos"`
}

// CollectionResponse is the body of GET /collection.
type CollectionResponse struct {
	Videos    []Video        `json:"videos"`
	Playlists []PlaylistView `json:"playlists"`
}

// NewCollectionResponse expands a snapshot into the GET /collection shape.
func NewCollectionResponse(s Snapshot) CollectionResponse {
	byID := make(map[string]Video, len(s.Videos))
	for _, v := range s.Videos {
		byID[v.ID] = v
	}

	resp := CollectionResponse{
		Videos:    append([]Video{}, s.Videos...),
		Playlists: make([]PlaylistView, 0, len(s.Playlists)),
	}
	for _, p := range s.Playlists {
		view := PlaylistView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			Videos:      make([]Video, 0, len(p.VideoIDs)),
		}
		for _, id := range p.VideoIDs {
			if v, ok := byID[id]; ok {
				view.Videos = append(view.Videos, v)
			}
		}
		resp.Playlists = append(resp.Playlists, view)
	}
	return resp
}

// DecodeCollection parses a GET /collection body into a normalized [Snapshot].
//
// Both top-level arrays must be present; anything else is [shared.ErrMalformedPayload].
// Videos that only appear inside a playlist are added to the master list.
func DecodeCollection(data []byte) (Snapshot, error) {
	var body struct {
		Videos    *[]Video        `json:"videos"`
		Playlists *[]PlaylistView `json:"playlists"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}
	if body.Videos == nil || body.Playlists == nil {
		return Snapshot{}, fmt.Errorf("%w: videos and playlists are required", shared.ErrMalformedPayload)
	}

	s := Snapshot{Videos: *body.Videos, Playlists: make([]Playlist, 0, len(*body.Playlists))}
	for _, view := range *body.Playlists {
		if view.ID == "" {
			return Snapshot{}, fmt.Errorf("%w: playlist without id", shared.ErrMalformedPayload)
		}
		p := Playlist{
			ID:          view.ID,
			Name:        view.Name,
			Description: view.Description,
			CreatedAt:   view.CreatedAt,
			UpdatedAt:   view.UpdatedAt,
			VideoIDs:    make([]string, 0, len(view.Videos)),
		}
		for _, v := range view.Videos {
			p.VideoIDs = append(p.VideoIDs, v.ID)
			s.Videos = append(s.Videos, v)
		}
		s.Playlists = append(s.Playlists, p)
	}

	s.Normalize()
	return s, nil
}

// VideoRef is a playlist entry in a PUT body. It decodes from either a bare id string or an object with an id.
type VideoRef struct {
	ID string
}

// UnmarshalJSON accepts "id" or {"id": "..."}
func (r *VideoRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

// MarshalJSON encodes the reference as a bare id string
func (r VideoRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// PlaylistBody is a playlist entry in a PUT body. Absent fields are left untouched by a merge.
type PlaylistBody struct {
	ID          string      `json:"id"`
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
	Videos      *[]VideoRef `json:"videos,omitempty"`
}

// WriteBody is the body of PUT /collection.
type WriteBody struct {
	Mode      string          `json:"mode,omitempty"`
	Videos    *[]Video        `json:"videos,omitempty"`
	Playlists *[]PlaylistBody `json:"playlists,omitempty"`
}

// WriteRequest is a decoded PUT body: exactly one of [FullReplace] or [PartialMerge].
type WriteRequest interface {
	Mode() string
	writeRequest()
}

// FullReplace wipes every row and inserts exactly the payload.
//
// Implicit is set when the body did not name a mode.
type FullReplace struct {
	Videos    []Video
	Playlists []Playlist
	Implicit  bool
}

func (FullReplace) Mode() string  { return ModeReplace }
func (FullReplace) writeRequest() {}

// Empty reports whether the request carries no videos and no playlists.
func (r FullReplace) Empty() bool {
	return len(r.Videos) == 0 && len(r.Playlists) == 0
}

// PartialMerge upserts only the videos and playlists it names.
type PartialMerge struct {
	Videos    []Video
	Playlists []PlaylistPatch
}

func (PartialMerge) Mode() string  { return ModeMerge }
func (PartialMerge) writeRequest() {}

// PlaylistPatch is a merge of one playlist. The ordering rows are rewritten only when ReplaceOrder is true.
type PlaylistPatch struct {
	ID           string
	Name         *string
	Description  *string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
	Order        []string
	ReplaceOrder bool
}

// PatchFromPlaylist builds a merge patch carrying every field of p, including its order.
func PatchFromPlaylist(p Playlist) PlaylistPatch {
	name, desc := p.Name, p.Description
	created, updated := p.CreatedAt, p.UpdatedAt
	return PlaylistPatch{
		ID:           p.ID,
		Name:         &name,
		Description:  &desc,
		CreatedAt:    &created,
		UpdatedAt:    &updated,
		Order:        append([]string{}, p.VideoIDs...),
		ReplaceOrder: true,
	}
}

// NewReplace builds an explicit [FullReplace] from a snapshot.
func NewReplace(s Snapshot) FullReplace {
	c := s.Clone()
	return FullReplace{Videos: c.Videos, Playlists: c.Playlists}
}

// EncodeWriteRequest renders a request as a PUT /collection body.
//
// An implicit [FullReplace] omits the mode field.
func EncodeWriteRequest(req WriteRequest) ([]byte, error) {
	body := WriteBody{}

	switch r := req.(type) {
	case FullReplace:
		if !r.Implicit {
			body.Mode = ModeReplace
		}
		videos := append([]Video{}, r.Videos...)
		playlists := make([]PlaylistBody, 0, len(r.Playlists))
		for _, p := range r.Playlists {
			playlists = append(playlists, playlistBody(PatchFromPlaylist(p)))
		}
		body.Videos = &videos
		body.Playlists = &playlists
	case PartialMerge:
		body.Mode = ModeMerge
		if len(r.Videos) > 0 {
			videos := append([]Video{}, r.Videos...)
			body.Videos = &videos
		}
		if len(r.Playlists) > 0 {
			playlists := make([]PlaylistBody, 0, len(r.Playlists))
			for _, p := range r.Playlists {
				playlists = append(playlists, playlistBody(p))
			}
			body.Playlists = &playlists
		}
	default:
		return nil, fmt.Errorf("%w: unknown write request %T", shared.ErrInvalidInput, req)
	}

	return json.Marshal(body)
}

func playlistBody(p PlaylistPatch) PlaylistBody {
	b := PlaylistBody{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.ReplaceOrder {
		refs := make([]VideoRef, 0, len(p.Order))
		for _, id := range p.Order {
			refs = append(refs, VideoRef{ID: id})
		}
		b.Videos = &refs
	}
	return b
}

// DecodeWriteRequest parses a PUT /collection body.
//
// A missing mode decodes to an implicit [FullReplace]. Unknown modes and entries without ids are
// rejected with [shared.ErrInvalidInput]; unparsable JSON yields [shared.ErrMalformedPayload].
func DecodeWriteRequest(data []byte) (WriteRequest, error) {
	var body WriteBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}

	var videos []Video
	if body.Videos != nil {
		videos = *body.Videos
	}
	for _, v := range videos {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}

	var patches []PlaylistPatch
	if body.Playlists != nil {
		for _, pb := range *body.Playlists {
			if pb.ID == "" {
				return nil, fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
			}
			patch := PlaylistPatch{
				ID:          pb.ID,
				Name:        pb.Name,
				Description: pb.Description,
				CreatedAt:   pb.CreatedAt,
				UpdatedAt:   pb.UpdatedAt,
			}
			if pb.Videos != nil {
				patch.ReplaceOrder = true
				patch.Order = make([]string, 0, len(*pb.Videos))
				for _, ref := range *pb.Videos {
					patch.Order = append(patch.Order, ref.ID)
				}
			}
			patches = append(patches, patch)
		}
	}

	switch body.Mode {
	case ModeMerge:
		return PartialMerge{Videos: videos, Playlists: patches}, nil
	case ModeReplace, "":
		req := FullReplace{Videos: videos, Implicit: body.Mode == ""}
		for _, patch := range patches {
			req.Playlists = append(req.Playlists, patch.Playlist())
		}
		return req, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", shared.ErrInvalidInput, body.Mode)
	}
}

// Playlist materializes the patch as a full playlist, using zero values for absent fields.
func (p PlaylistPatch) Playlist() Playlist {
	pl := Playlist{ID: p.ID, VideoIDs: FilterIDs(p.Order, nil)}
	if p.Name != nil {
		pl.Name = *p.Name
	}
	if p.Description != nil {
		pl.Description = *p.Description
	}
	if p.CreatedAt != nil {
		pl.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		pl.UpdatedAt = *p.UpdatedAt
	}
	return pl
}

// WriteResult acknowledges a PUT /collection.
type WriteResult struct {
	OK        bool   `json:"ok"`
	Mode      string `json:"mode"`
	Skipped   bool   `json:"skipped"`
	Videos    int    `json:"videos"`
	Playlists int    `json:"playlists"`
}

// DeleteResult acknowledges a DELETE /collection/playlists/{id}.
type DeleteResult struct {
	OK      bool `json:"ok"`
	Deleted bool `json:"deleted"`
}
