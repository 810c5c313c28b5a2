package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/blob"
)

// ErrMediaUnavailable is wrapped by ExportFile when a record's media
// cannot be reassembled.
var ErrMediaUnavailable = errors.New("media unavailable")

// ResolveMedia fetches the externalized payload of a record. Text
// records have nothing to resolve and return (nil, nil), as does a
// record whose media is gone; callers render a placeholder in that
// case.
func (s *Store) ResolveMedia(ctx context.Context, rec Record) (*blob.Object, error) {
	switch rec.Kind {
	case KindText:
		return nil, nil
	case KindImageGen, KindImageEdit, KindVideoGen, KindTTS:
		return s.media.Get(ctx, rec.ID)
	default:
		return nil, fmt.Errorf("unknown record kind %q", rec.Kind)
	}
}

// ExportFile turns a record into a downloadable file. Text records are
// synthesized from the inline payload; every other kind resolves its
// blob and picks the extension by kind.
func (s *Store) ExportFile(ctx context.Context, rec Record) (string, blob.Object, error) {
	name := fmt.Sprintf("%s-%d", rec.Kind, rec.ID)

	switch rec.Kind {
	case KindText:
		return name + ".txt", blob.Object{MIME: "text/plain", Bytes: []byte(rec.Data)}, nil
	case KindTTS:
		name += ".wav"
	case KindVideoGen:
		name += ".mp4"
	case KindImageGen, KindImageEdit:
		name += ".jpg"
	default:
		return "", blob.Object{}, fmt.Errorf("unknown record kind %q", rec.Kind)
	}

	obj, err := s.media.Get(ctx, rec.ID)
	if err != nil {
		return "", blob.Object{}, fmt.Errorf("export %d: %w", rec.ID, err)
	}
	if obj == nil {
		return "", blob.Object{}, fmt.Errorf("export %d: %w", rec.ID, ErrMediaUnavailable)
	}
	return name, *obj, nil
}
