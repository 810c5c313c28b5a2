package blob

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "media.db"), nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := Object{MIME: "image/jpeg", Bytes: []byte{0xff, 0xd8, 0xff, 0xe0}}
	if err := s.Put(ctx, 42, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("got nil object")
	}
	if got.MIME != want.MIME {
		t.Errorf("mime = %q, want %q", got.MIME, want.MIME)
	}
	if !bytes.Equal(got.Bytes, want.Bytes) {
		t.Errorf("bytes = %v, want %v", got.Bytes, want.Bytes)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, 1, Object{MIME: "video/mp4", Bytes: []byte("old")}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, 1, Object{MIME: "audio/wav", Bytes: []byte("new")}); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MIME != "audio/wav" || string(got.Bytes) != "new" {
		t.Errorf("got %q %q, want overwrite to win", got.MIME, got.Bytes)
	}
}

func TestGetAbsent(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("get absent: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for absent id", got)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, 7, Object{MIME: "audio/wav", Bytes: []byte("x")}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.Get(ctx, 7); got != nil {
		t.Error("object still present after delete")
	}
	// Never-present id
	if err := s.Delete(ctx, 7); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		if err := s.Put(ctx, id, Object{MIME: "image/jpeg", Bytes: []byte{byte(id)}}); err != nil {
			t.Fatalf("put %d: %v", id, err)
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for id := int64(1); id <= 5; id++ {
		if got, err := s.Get(ctx, id); err != nil || got != nil {
			t.Errorf("get %d after clear = %v, %v; want nil, nil", id, got, err)
		}
	}
}

func TestConcurrentFirstUse(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		id := int64(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Put(ctx, id, Object{MIME: "image/jpeg", Bytes: []byte{byte(id)}})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent put: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		got, err := s.Get(ctx, int64(i))
		if err != nil || got == nil {
			t.Fatalf("get %d = %v, %v", i, got, err)
		}
	}
}
