package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/blob"
)

func TestWatchSeesExternalAdd(t *testing.T) {
	dir := t.TempDir()
	media := blob.NewStore(filepath.Join(dir, "media.db"), nil)
	defer media.Close()
	path := filepath.Join(dir, "history.json")

	watcherStore := NewStore(path, media, nil)
	if err := watcherStore.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	writerStore := NewStore(path, media, nil)
	if err := writerStore.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []Record, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcherStore.Watch(ctx, func(items []Record) { updates <- items })
	}()

	// Give the watcher a moment to arm before writing.
	time.Sleep(200 * time.Millisecond)

	if _, err := writerStore.Add(ctx, KindText, "from elsewhere", Payload{Text: "x"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case items := <-updates:
			if len(items) == 1 && items[0].Prompt == "from elsewhere" {
				cancel()
				<-done
				return
			}
		case <-deadline:
			t.Fatal("watcher never delivered the new record")
		}
	}
}
