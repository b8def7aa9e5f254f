// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// FakeRemote is an in-memory test double for services.RemoteStore
type FakeRemote struct {
	mu         sync.Mutex
	snapshot   models.Snapshot
	writes     []models.WriteRequest
	deleted    []string
	fetchCalls int

	FetchErr  error
	WriteErr  error
	DeleteErr error
}

// NewFakeRemote creates a remote holding s
func NewFakeRemote(s models.Snapshot) *FakeRemote {
	return &FakeRemote{snapshot: s.Clone()}
}

func (f *FakeRemote) Fetch(ctx context.Context) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.FetchErr != nil {
		return models.Snapshot{}, f.FetchErr
	}
	return f.snapshot.Clone(), nil
}

func (f *FakeRemote) Write(ctx context.Context, req models.WriteRequest) (models.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, req)
	if f.WriteErr != nil {
		return models.WriteResult{}, f.WriteErr
	}

	switch r := req.(type) {
	case models.FullReplace:
		f.snapshot = models.Snapshot{Videos: r.Videos, Playlists: r.Playlists}.Clone()
	case models.PartialMerge:
		for _, patch := range r.Playlists {
			replaced := false
			for i, p := range f.snapshot.Playlists {
				if p.ID == patch.ID {
					f.snapshot.Playlists[i] = patch.Playlist()
					replaced = true
				}
			}
			if !replaced {
				f.snapshot.Playlists = append(f.snapshot.Playlists, patch.Playlist())
			}
		}
	}
	return models.WriteResult{OK: true, Mode: req.Mode()}, nil
}

func (f *FakeRemote) DeletePlaylist(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.deleted = append(f.deleted, id)
	kept := f.snapshot.Playlists[:0]
	for _, p := range f.snapshot.Playlists {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.snapshot.Playlists = kept
	return nil
}

// Writes returns every write received so far
func (f *FakeRemote) Writes() []models.WriteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.WriteRequest{}, f.writes...)
}

// Deleted returns the playlist ids deleted so far
func (f *FakeRemote) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

// FetchCalls returns how many times Fetch ran
func (f *FakeRemote) FetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

// Stored returns the current remote state
func (f *FakeRemote) Stored() models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot.Clone()
}

// FakeMirror is an in-memory test double for mirror.Mirror
type FakeMirror struct {
	mu       sync.Mutex
	snapshot *models.Snapshot
	saves    int

	SaveErr error
	LoadErr error
}

// NewFakeMirror creates a mirror; a nil snapshot means nothing has been saved
func NewFakeMirror(s *models.Snapshot) *FakeMirror {
	m := &FakeMirror{}
	if s != nil {
		c := s.Clone()
		m.snapshot = &c
	}
	return m
}

func (m *FakeMirror) Load(ctx context.Context) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return models.Snapshot{}, m.LoadErr
	}
	if m.snapshot == nil {
		return models.Snapshot{}, shared.ErrMirrorNotFound
	}
	return m.snapshot.Clone(), nil
}

func (m *FakeMirror) Save(ctx context.Context, s models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	c := s.Clone()
	m.snapshot = &c
	return nil
}

func (m *FakeMirror) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	return nil
}

// Saves returns how many times Save ran
func (m *FakeMirror) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Stored returns the saved snapshot, if any
func (m *FakeMirror) Stored() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return models.Snapshot{}, false
	}
	return m.snapshot.Clone(), true
}

// FakePlayer records what the sequencer asked the external player to do
type FakePlayer struct {
	Loaded  []models.Video
	Stops   int
	LoadErr error
}

func (p *FakePlayer) Load(v models.Video) error {
	p.Loaded = append(p.Loaded, v)
	return p.LoadErr
}

func (p *FakePlayer) Stop() error {
	p.Stops++
	return nil
}

// Last returns the most recently loaded video id
func (p *FakePlayer) Last() string {
	if len(p.Loaded) == 0 {
		return ""
	}
	return p.Loaded[len(p.Loaded)-1].ID
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// AssertDirExists fails the test if path is not a directory
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected directory %s to exist: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %s to be a directory", path)
	}
}
