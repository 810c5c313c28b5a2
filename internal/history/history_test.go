package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/blob"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/codec"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	media := blob.NewStore(filepath.Join(dir, "media.db"), nil)
	t.Cleanup(func() { media.Close() })
	s := NewStore(filepath.Join(dir, "history.json"), media, nil)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestAddTextInline(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, KindText, "hello", Payload{Text: "world"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.Prompt != "hello" || rec.Data != "world" {
		t.Errorf("record = %q/%q, want hello/world", rec.Prompt, rec.Data)
	}

	// Text never touches the blob store.
	if obj, err := s.media.Get(ctx, rec.ID); err != nil || obj != nil {
		t.Errorf("blob for text record = %v, %v; want nil, nil", obj, err)
	}

	items := s.Items()
	if len(items) != 1 || items[0].Data != "world" {
		t.Errorf("items = %+v, want one inline text record", items)
	}
}

func TestAddImageExternalizes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	img := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}
	rec, err := s.Add(ctx, KindImageGen, "a cat", Payload{Bytes: img, MIME: "image/jpeg"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !bytes.Equal(rec.Media, img) || rec.MIME != "image/jpeg" {
		t.Error("returned record does not carry the supplied payload")
	}

	// Persisted entry must be empty; bytes live in the blob store.
	if got := s.Items()[0].Data; got != "" {
		t.Errorf("persisted data = %q, want empty", got)
	}
	obj, err := s.ResolveMedia(ctx, rec)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if obj == nil || !bytes.Equal(obj.Bytes, img) || obj.MIME != "image/jpeg" {
		t.Errorf("resolved = %+v, want original bytes back", obj)
	}
}

func TestAddSpeechBuildsWAV(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pcm := bytes.Repeat([]byte{0x34, 0x12}, 100)
	rec, err := s.Add(ctx, KindTTS, "hi", Payload{Text: codec.Encode(pcm)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	obj, err := s.ResolveMedia(ctx, rec)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if obj == nil {
		t.Fatal("no blob stored for speech record")
	}
	if obj.MIME != "audio/wav" {
		t.Errorf("mime = %q, want audio/wav", obj.MIME)
	}
	if len(obj.Bytes) != 44+len(pcm) {
		t.Fatalf("wav len = %d, want %d", len(obj.Bytes), 44+len(pcm))
	}
	if string(obj.Bytes[:4]) != "RIFF" || string(obj.Bytes[8:12]) != "WAVE" {
		t.Error("blob is not a WAV container")
	}
	if !bytes.Equal(obj.Bytes[44:], pcm) {
		t.Error("WAV PCM section differs from decoded input")
	}
	// The caller-facing record keeps the supplied base64.
	if rec.Data != codec.Encode(pcm) {
		t.Error("returned record lost the original payload")
	}
}

func TestAddSpeechMalformedBase64(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Add(context.Background(), KindTTS, "hi", Payload{Text: "not!!base64"})
	if !errors.Is(err, codec.ErrDecode) {
		t.Errorf("err = %v, want codec.ErrDecode", err)
	}
	if len(s.Items()) != 0 {
		t.Error("malformed speech payload still inserted a record")
	}
}

func TestBoundEviction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < MaxItems+5; i++ {
		rec, err := s.Add(ctx, KindText, fmt.Sprintf("p%d", i), Payload{Text: fmt.Sprintf("d%d", i)})
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}

	items := s.Items()
	if len(items) != MaxItems {
		t.Fatalf("len = %d, want %d", len(items), MaxItems)
	}
	// Newest first.
	if items[0].Prompt != fmt.Sprintf("p%d", MaxItems+4) {
		t.Errorf("head = %q, want newest", items[0].Prompt)
	}
	for i := 1; i < len(items); i++ {
		if items[i].ID >= items[i-1].ID {
			t.Fatalf("items[%d].ID %d not older than items[%d].ID %d", i, items[i].ID, i-1, items[i-1].ID)
		}
	}
	// The five oldest are gone.
	present := make(map[int64]bool)
	for _, it := range items {
		present[it.ID] = true
	}
	for _, id := range ids[:5] {
		if present[id] {
			t.Errorf("evicted id %d still present", id)
		}
	}
}

func TestEvictionDeletesBlob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Add(ctx, KindImageGen, "oldest", Payload{Bytes: []byte{1}, MIME: "image/jpeg"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < MaxItems; i++ {
		if _, err := s.Add(ctx, KindText, "p", Payload{Text: "d"}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	s.evictions.Wait()

	if obj, err := s.media.Get(ctx, first.ID); err != nil || obj != nil {
		t.Errorf("blob for evicted record = %v, %v; want nil, nil", obj, err)
	}
}

func TestClearWipesBoth(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		rec, err := s.Add(ctx, KindImageGen, "p", Payload{Bytes: []byte{byte(i)}, MIME: "image/jpeg"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Error("items not empty after clear")
	}
	for _, id := range ids {
		if obj, err := s.media.Get(ctx, id); err != nil || obj != nil {
			t.Errorf("blob %d survived clear", id)
		}
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("history file survived clear")
	}
}

func TestUniqueIDsWithinSameMillisecond(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		rec, err := s.Add(ctx, KindText, "p", Payload{Text: "d"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %d", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	media := blob.NewStore(filepath.Join(dir, "media.db"), nil)
	defer media.Close()
	path := filepath.Join(dir, "history.json")

	s := NewStore(path, media, nil)
	if err := s.Load(); err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if _, err := s.Add(context.Background(), KindText, "keep", Payload{Text: "me"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Fresh store over the same file sees the same list.
	s2 := NewStore(path, media, nil)
	if err := s2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	items := s2.Items()
	if len(items) != 1 || items[0].Prompt != "keep" || items[0].Data != "me" {
		t.Errorf("reloaded items = %+v", items)
	}
}

func TestLoadUnparsableStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	media := blob.NewStore(filepath.Join(dir, "media.db"), nil)
	defer media.Close()
	path := filepath.Join(dir, "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, media, nil)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Error("unparsable file should load as empty history")
	}
}

func TestLoadClampsOversizedList(t *testing.T) {
	dir := t.TempDir()
	media := blob.NewStore(filepath.Join(dir, "media.db"), nil)
	defer media.Close()
	path := filepath.Join(dir, "history.json")

	var items []Record
	for i := 0; i < MaxItems+10; i++ {
		items = append(items, Record{ID: int64(1000 - i), Kind: KindText, Prompt: "p", Data: "d"})
	}
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, media, nil)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(s.Items()); got != MaxItems {
		t.Errorf("len = %d, want clamp to %d", got, MaxItems)
	}
}
