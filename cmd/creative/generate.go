package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/genai"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/history"
)

func generateCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate text, images, video, or speech",
	}
	cmd.AddCommand(
		generateTextCmd(cfgPath),
		generatePromptCmd(cfgPath),
		generateImageCmd(cfgPath),
		generateBlendCmd(cfgPath),
		generateEditCmd(cfgPath),
		generateVideoCmd(cfgPath),
		generateSpeechCmd(cfgPath),
	)
	return cmd
}

func generateTextCmd(cfgPath *string) *cobra.Command {
	var model string
	var thinking bool
	cmd := &cobra.Command{
		Use:   "text <prompt>",
		Short: "Generate text from a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			text, err := a.client.GenerateText(ctx, args[0], genai.TextModel(model), thinking)
			if err != nil {
				return err
			}
			if _, err := a.history.Add(ctx, history.KindText, args[0], history.Payload{Text: text}); err != nil {
				return err
			}

			rendered, err := glamour.Render(text, "dark")
			if err != nil {
				fmt.Println(text)
				return nil
			}
			fmt.Print(rendered)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", string(genai.TextModelFlash), "model tier (gemini-2.5-pro, gemini-2.5-flash, gemini-flash-lite-latest)")
	cmd.Flags().BoolVar(&thinking, "thinking", false, "enable the extended reasoning budget")
	return cmd
}

func generatePromptCmd(cfgPath *string) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "prompt <idea>",
		Short: "Expand a bare idea into a refined image/video prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if target != "image" && target != "video" {
				return fmt.Errorf("--target must be image or video")
			}
			refined, err := a.client.GenerateCreativePrompt(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			fmt.Println(strings.TrimSpace(refined))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "image", "what the prompt is for (image or video)")
	return cmd
}

func generateImageCmd(cfgPath *string) *cobra.Command {
	var aspect, out string
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image from a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			img, err := a.client.GenerateImage(ctx, args[0], genai.AspectRatio(aspect))
			if err != nil {
				return err
			}
			rec, err := a.history.Add(ctx, history.KindImageGen, args[0], history.Payload{Bytes: img.Data, MIME: img.MIME})
			if err != nil {
				return err
			}
			return saveArtifact(ctx, a, rec, out)
		},
	}
	cmd.Flags().StringVar(&aspect, "aspect", "1:1", "aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>-<id>.<ext>)")
	return cmd
}

func generateBlendCmd(cfgPath *string) *cobra.Command {
	var aspect, out string
	var images []string
	cmd := &cobra.Command{
		Use:   "blend <prompt>",
		Short: "Blend several images into one seamless composite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(images) < 2 {
				return fmt.Errorf("need at least two --image files to blend")
			}
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			inputs, err := readImages(images)
			if err != nil {
				return err
			}
			img, err := a.client.BlendImages(ctx, args[0], inputs, genai.AspectRatio(aspect))
			if err != nil {
				return err
			}
			rec, err := a.history.Add(ctx, history.KindImageEdit, args[0], history.Payload{Bytes: img.Data, MIME: img.MIME})
			if err != nil {
				return err
			}
			return saveArtifact(ctx, a, rec, out)
		},
	}
	cmd.Flags().StringArrayVar(&images, "image", nil, "source image file (repeat)")
	cmd.Flags().StringVar(&aspect, "aspect", "1:1", "aspect ratio of the composite")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func generateEditCmd(cfgPath *string) *cobra.Command {
	var out, logo string
	var images []string
	cmd := &cobra.Command{
		Use:   "edit <instruction>",
		Short: "Edit one or more images with an instruction prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(images) == 0 {
				return fmt.Errorf("need at least one --image file to edit")
			}
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			inputs, err := readImages(images)
			if err != nil {
				return err
			}
			var logoImg *genai.Image
			if logo != "" {
				li, err := readImage(logo)
				if err != nil {
					return err
				}
				logoImg = &li
			}
			img, err := a.client.EditImage(ctx, args[0], inputs, logoImg)
			if err != nil {
				return err
			}
			rec, err := a.history.Add(ctx, history.KindImageEdit, args[0], history.Payload{Bytes: img.Data, MIME: img.MIME})
			if err != nil {
				return err
			}
			return saveArtifact(ctx, a, rec, out)
		},
	}
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file to edit (repeat)")
	cmd.Flags().StringVar(&logo, "logo", "", "optional overlay image")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func generateVideoCmd(cfgPath *string) *cobra.Command {
	var aspect, seed, out string
	cmd := &cobra.Command{
		Use:   "video <prompt>",
		Short: "Generate a short video (polls until the operation completes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			var seedImg *genai.Image
			if seed != "" {
				si, err := readImage(seed)
				if err != nil {
					return err
				}
				seedImg = &si
			}
			fmt.Fprintln(os.Stderr, "Generating video; this can take a few minutes...")
			video, err := a.client.GenerateVideo(ctx, args[0], genai.VideoAspectRatio(aspect), seedImg)
			if err != nil {
				return err
			}
			rec, err := a.history.Add(ctx, history.KindVideoGen, args[0], history.Payload{Bytes: video, MIME: "video/mp4"})
			if err != nil {
				return err
			}
			return saveArtifact(ctx, a, rec, out)
		},
	}
	cmd.Flags().StringVar(&aspect, "aspect", "16:9", "aspect ratio (16:9 or 9:16)")
	cmd.Flags().StringVar(&seed, "seed-image", "", "optional seed image file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func generateSpeechCmd(cfgPath *string) *cobra.Command {
	var voice, out string
	cmd := &cobra.Command{
		Use:   "speech <text>",
		Short: "Synthesize speech and save it as a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if voice == "" {
				voice = a.cfg.Gemini.Voice
			}
			pcmBase64, err := a.client.GenerateSpeech(ctx, args[0], voice)
			if err != nil {
				return err
			}
			rec, err := a.history.Add(ctx, history.KindTTS, args[0], history.Payload{Text: pcmBase64})
			if err != nil {
				return err
			}
			return saveArtifact(ctx, a, rec, out)
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "prebuilt voice name (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func readImages(paths []string) ([]genai.Image, error) {
	out := make([]genai.Image, 0, len(paths))
	for _, p := range paths {
		img, err := readImage(p)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// saveArtifact writes the just-created record's media to disk, using
// the export surface so the filename matches a later 'history export'.
func saveArtifact(ctx context.Context, a *app, rec history.Record, out string) error {
	name, obj, err := a.history.ExportFile(ctx, rec)
	if err != nil {
		return err
	}
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, obj.Bytes, 0644); err != nil {
		return err
	}
	fmt.Printf("Saved %s (%s, %d bytes)\n", out, obj.MIME, len(obj.Bytes))
	return nil
}
