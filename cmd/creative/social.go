package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/genai"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/history"
)

func socialCmd(cfgPath *string) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "social",
		Short: "Generate social-media post variants for a past creation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			rec, img, err := mediaRecord(ctx, a, id)
			if err != nil {
				return err
			}
			posts, err := a.client.GenerateSocialPosts(ctx, rec.Prompt, img)
			if err != nil {
				return err
			}
			for _, p := range posts {
				fmt.Printf("== %s ==\n%s\n\n", p.Platform, strings.TrimSpace(p.Content))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "history record id (default: most recent media record)")
	return cmd
}

func narrateCmd(cfgPath *string) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Write a short narration script for a past creation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			rec, img, err := mediaRecord(ctx, a, id)
			if err != nil {
				return err
			}
			script, err := a.client.GenerateNarration(ctx, rec.Prompt, img)
			if err != nil {
				return err
			}
			fmt.Println(strings.TrimSpace(script))
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "history record id (default: most recent media record)")
	return cmd
}

// mediaRecord picks the referenced (or most recent) media record and
// resolves its image if one is available. Videos narrate from the
// prompt alone; a missing blob degrades to prompt-only as well.
func mediaRecord(ctx context.Context, a *app, id int64) (history.Record, *genai.Image, error) {
	var rec *history.Record
	for _, it := range a.history.Items() {
		it := it
		if id != 0 {
			if it.ID == id {
				rec = &it
				break
			}
			continue
		}
		if it.Kind == history.KindImageGen || it.Kind == history.KindImageEdit || it.Kind == history.KindVideoGen {
			rec = &it
			break
		}
	}
	if rec == nil {
		if id != 0 {
			return history.Record{}, nil, fmt.Errorf("no history record with id %d", id)
		}
		return history.Record{}, nil, fmt.Errorf("no media in history yet")
	}

	var img *genai.Image
	if rec.Kind == history.KindImageGen || rec.Kind == history.KindImageEdit {
		obj, err := a.history.ResolveMedia(ctx, *rec)
		if err == nil && obj != nil {
			img = &genai.Image{Data: obj.Bytes, MIME: obj.MIME}
		}
	}
	return *rec, img, nil
}
