// services/media_stage.go
package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"betegna-backend/storage"

	"github.com/google/uuid"
)

// StagedURIScheme prefixes every staged asset URI.
const StagedURIScheme = "staged://"

var (
	ErrUnknownAsset = errors.New("unknown staged asset")
	ErrStaleAsset   = errors.New("staged asset already released")
)

// StagedAsset is a pending upload held in memory until it is either
// persisted through the upload adapter or released.
type StagedAsset struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type stagedEntry struct {
	name        string
	contentType string
	data        []byte
	createdAt   time.Time
	released    bool
}

// MediaStage holds pending uploads keyed by staged:// URI. Entities must
// never reference a staged URI; the mutation pipeline resolves them to
// remote URLs before any relational write.
type MediaStage struct {
	mu      sync.Mutex
	entries map[string]*stagedEntry
	now     func() time.Time
}

func NewMediaStage() *MediaStage {
	return &MediaStage{
		entries: make(map[string]*stagedEntry),
		now:     time.Now,
	}
}

// IsStagedURI reports whether uri points into a media stage.
func IsStagedURI(uri string) bool {
	return strings.HasPrefix(uri, StagedURIScheme)
}

// Create stores raw bytes and returns their staged asset handle.
func (s *MediaStage) Create(name, contentType string, data []byte) StagedAsset {
	uri := StagedURIScheme + uuid.NewString()

	s.mu.Lock()
	s.entries[uri] = &stagedEntry{
		name:        name,
		contentType: contentType,
		data:        data,
		createdAt:   s.now(),
	}
	s.mu.Unlock()

	return StagedAsset{URI: uri, Name: name, ContentType: contentType, Size: int64(len(data))}
}

// Read returns the staged bytes as an uploadable file. Reading a released
// or unknown URI fails; callers must not hold on to freed assets.
func (s *MediaStage) Read(uri string) (storage.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[uri]
	if !ok {
		return storage.File{}, ErrUnknownAsset
	}
	if e.released {
		return storage.File{}, ErrStaleAsset
	}
	return storage.File{Name: e.name, ContentType: e.contentType, Data: e.data}, nil
}

// Release frees the staged bytes. Releasing twice is a tolerated no-op;
// the entry stays marked so later reads fail with ErrStaleAsset instead
// of ErrUnknownAsset.
func (s *MediaStage) Release(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[uri]
	if !ok || e.released {
		return
	}
	e.released = true
	e.data = nil
}

// Active returns the number of live (unreleased) assets.
func (s *MediaStage) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if !e.released {
			n++
		}
	}
	return n
}

// Sweep releases assets older than ttl and drops released entries.
// Returns the number of live assets it reclaimed.
func (s *MediaStage) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	reclaimed := 0
	for uri, e := range s.entries {
		if e.released {
			delete(s.entries, uri)
			continue
		}
		if e.createdAt.Before(cutoff) {
			reclaimed++
			delete(s.entries, uri)
		}
	}
	return reclaimed
}

// Arena scopes staged assets to one draft form. Closing the arena releases
// every asset created through it, so a form teardown cannot leak previews.
type Arena struct {
	stage  *MediaStage
	mu     sync.Mutex
	uris   []string
	closed bool
}

func (s *MediaStage) NewArena() *Arena {
	return &Arena{stage: s}
}

func (a *Arena) Create(name, contentType string, data []byte) (StagedAsset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return StagedAsset{}, ErrStaleAsset
	}
	asset := a.stage.Create(name, contentType, data)
	a.uris = append(a.uris, asset.URI)
	return asset, nil
}

// Close releases all assets created through the arena. Idempotent.
func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	for _, uri := range a.uris {
		a.stage.Release(uri)
	}
	a.uris = nil
}
