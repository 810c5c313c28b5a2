package history

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExportText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, KindText, "prompt", Payload{Text: "generated words"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	name, obj, err := s.ExportFile(ctx, rec)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(name, ".txt") || !strings.HasPrefix(name, "text-") {
		t.Errorf("name = %q, want text-<id>.txt", name)
	}
	if obj.MIME != "text/plain" || string(obj.Bytes) != "generated words" {
		t.Errorf("obj = %q %q", obj.MIME, obj.Bytes)
	}
}

func TestExportExtensions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cases := []struct {
		kind Kind
		ext  string
	}{
		{KindImageGen, ".jpg"},
		{KindImageEdit, ".jpg"},
		{KindVideoGen, ".mp4"},
	}
	for _, tc := range cases {
		rec, err := s.Add(ctx, tc.kind, "p", Payload{Bytes: []byte{1, 2}, MIME: "application/octet-stream"})
		if err != nil {
			t.Fatalf("add %s: %v", tc.kind, err)
		}
		name, obj, err := s.ExportFile(ctx, rec)
		if err != nil {
			t.Fatalf("export %s: %v", tc.kind, err)
		}
		if !strings.HasSuffix(name, tc.ext) {
			t.Errorf("%s name = %q, want suffix %s", tc.kind, name, tc.ext)
		}
		if !bytes.Equal(obj.Bytes, []byte{1, 2}) {
			t.Errorf("%s export bytes = %v", tc.kind, obj.Bytes)
		}
	}
}

func TestExportMissingBlob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, KindVideoGen, "p", Payload{Bytes: []byte{9}, MIME: "video/mp4"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.media.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, _, err := s.ExportFile(ctx, rec); !errors.Is(err, ErrMediaUnavailable) {
		t.Errorf("err = %v, want ErrMediaUnavailable", err)
	}

	// ResolveMedia treats the same condition as absent, not an error.
	obj, err := s.ResolveMedia(ctx, rec)
	if err != nil || obj != nil {
		t.Errorf("resolve = %v, %v; want nil, nil", obj, err)
	}
}

func TestResolveMediaText(t *testing.T) {
	s := openTestStore(t)

	obj, err := s.ResolveMedia(context.Background(), Record{ID: 1, Kind: KindText, Data: "x"})
	if err != nil || obj != nil {
		t.Errorf("resolve text = %v, %v; want nil, nil", obj, err)
	}
}
