package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/blob"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/codec"
)

// MaxItems bounds the history log. Once exceeded, the oldest records
// (and their media) are evicted.
const MaxItems = 50

// Speech audio returned by the generation service is raw 16-bit PCM at
// 24 kHz mono.
const (
	speechSampleRate = 24000
	speechChannels   = 1
	speechBits       = 16
)

// Kind discriminates what a record's payload is.
type Kind string

const (
	KindText      Kind = "text"
	KindImageGen  Kind = "imageGen"
	KindImageEdit Kind = "imageEdit"
	KindVideoGen  Kind = "videoGen"
	KindTTS       Kind = "tts"
)

// Record is one completed generation. For KindText the generated text
// lives inline in Data; for every other kind Data is persisted empty
// and the bytes live in the blob store under ID.
type Record struct {
	ID        int64  `json:"id"`
	Kind      Kind   `json:"type"`
	Timestamp int64  `json:"timestamp"` // unix millis, display only
	Prompt    string `json:"prompt"`
	Data      string `json:"data"`

	// Media/MIME carry the externalized payload back to the caller of
	// Add so it can use the artifact without a blob-store round trip.
	// Never persisted.
	Media []byte `json:"-"`
	MIME  string `json:"-"`
}

// Payload is the artifact handed to Add before externalization.
// Text holds inline text for KindText and base64 raw PCM for KindTTS;
// Bytes/MIME hold the media for the image and video kinds.
type Payload struct {
	Text  string
	Bytes []byte
	MIME  string
}

// Store keeps the bounded newest-first record log, mirrored between
// memory and a JSON file, with binary payloads externalized to the
// blob store.
type Store struct {
	path  string
	media *blob.Store
	log   *slog.Logger

	mu     sync.Mutex
	items  []Record
	lastID int64

	evictions sync.WaitGroup
}

func NewStore(path string, media *blob.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, media: media, log: log}
}

// Load reads the persisted record list. A missing or unparsable file
// yields an empty history; neither is fatal. Lists longer than
// MaxItems are clamped.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to load history, starting empty", "path", s.path, "error", err)
		}
		s.items = nil
		return nil
	}

	var items []Record
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn("history file unparsable, starting empty", "path", s.path, "error", err)
		s.items = nil
		return nil
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	s.items = items
	if len(items) > 0 && items[0].ID > s.lastID {
		s.lastID = items[0].ID
	}
	return nil
}

// Items returns a snapshot of the current record list, newest first.
func (s *Store) Items() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.items))
	copy(out, s.items)
	return out
}

// Add records one completed generation. Non-text payloads are moved to
// the blob store under the new record's id; a failed blob write is
// logged and the record is still inserted with an empty payload so the
// history line survives even if its media did not. Only a malformed
// speech payload (base64 that cannot decode) fails the call.
//
// The returned record carries the originally supplied payload: inline
// text in Data, media bytes in Media/MIME.
func (s *Store) Add(ctx context.Context, kind Kind, prompt string, payload Payload) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	id := now
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	rec := Record{
		ID:        id,
		Kind:      kind,
		Timestamp: now,
		Prompt:    prompt,
	}
	stored := rec

	switch kind {
	case KindText:
		rec.Data = payload.Text
		stored.Data = payload.Text
	case KindImageGen, KindImageEdit, KindVideoGen:
		rec.Media = payload.Bytes
		rec.MIME = payload.MIME
		if err := s.media.Put(ctx, id, blob.Object{MIME: payload.MIME, Bytes: payload.Bytes}); err != nil {
			s.log.Error("failed to save media, keeping record without it", "id", id, "kind", kind, "error", err)
		}
	case KindTTS:
		pcm, err := codec.Decode(payload.Text)
		if err != nil {
			return Record{}, fmt.Errorf("speech payload: %w", err)
		}
		wav := codec.WAVBlob(pcm, speechChannels, speechSampleRate, speechBits)
		rec.Data = payload.Text
		rec.Media = wav
		rec.MIME = "audio/wav"
		if err := s.media.Put(ctx, id, blob.Object{MIME: "audio/wav", Bytes: wav}); err != nil {
			s.log.Error("failed to save media, keeping record without it", "id", id, "kind", kind, "error", err)
		}
	default:
		return Record{}, fmt.Errorf("unknown record kind %q", kind)
	}

	s.items = append([]Record{stored}, s.items...)
	if len(s.items) > MaxItems {
		evicted := make([]Record, len(s.items)-MaxItems)
		copy(evicted, s.items[MaxItems:])
		s.items = s.items[:MaxItems]
		s.evictBlobs(evicted)
	}
	s.persistLocked()

	return rec, nil
}

// evictBlobs deletes the media of evicted records off the caller's
// path. Failures only make the blob store leak an entry, so they are
// logged and dropped.
func (s *Store) evictBlobs(evicted []Record) {
	s.evictions.Add(1)
	go func() {
		defer s.evictions.Done()
		ctx := context.Background()
		for _, rec := range evicted {
			if rec.Kind == KindText {
				continue
			}
			if err := s.media.Delete(ctx, rec.ID); err != nil {
				s.log.Error("failed to delete evicted media", "id", rec.ID, "error", err)
			}
		}
	}()
}

func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		s.log.Error("failed to encode history", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		// In-memory state stays authoritative for the running session.
		s.log.Error("failed to persist history", "path", s.path, "error", err)
	}
}

// Clear empties the history and the blob store. Both are attempted
// even if the first fails; the first failure is returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	var firstErr error
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		firstErr = fmt.Errorf("remove history file: %w", err)
	}
	if err := s.media.Clear(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
