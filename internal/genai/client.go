package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/codec"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	imageModel  = "imagen-4.0-generate-001"
	blendModel  = "gemini-2.5-flash-image"
	videoModel  = "veo-3.1-fast-generate-preview"
	speechModel = "gemini-2.5-flash-preview-tts"
)

// ErrMissingKey is returned when no API key has been configured.
var ErrMissingKey = errors.New("gemini API key not set; run 'creative auth' or set GEMINI_API_KEY")

// Client talks to the Gemini generation API.
type Client struct {
	apiKey  string
	baseURL string
	liveURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger

	// pollInterval paces the long-running video operation loop.
	pollInterval time.Duration
}

func NewClient(apiKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		liveURL: defaultLiveURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter:      rate.NewLimiter(rate.Every(time.Second), 2),
		log:          log,
		pollInterval: 5 * time.Second,
	}
}

// GenerateText runs a plain text completion. thinking enables the
// model's extended reasoning budget.
func (c *Client) GenerateText(ctx context.Context, prompt string, model TextModel, thinking bool) (string, error) {
	req := &geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if thinking {
		req.GenerationConfig = &generationConfig{
			ThinkingConfig: &thinkingConfig{ThinkingBudget: 32768},
		}
	}
	var resp geminiResponse
	if err := c.post(ctx, fmt.Sprintf("/models/%s:generateContent", model), req, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}

const promptBuilderInstruction = `You are an expert prompt engineer for advanced generative AI models. Your job is to turn the user's simple idea into a rich, detailed, visually evocative prompt.

Instructions:
1.  **Analyze the core idea:** Understand the basic concept the user provided.
2.  **Enrich with detail:** Expand the idea with specific details.
3.  **Pick an artistic style:** Commit to a clear style (e.g. photorealistic, cinematic, watercolor, cyberpunk, epic fantasy).
4.  **Set the composition:** Describe composition, camera angle, and shot type (e.g. wide shot, close-up, top-down).
5.  **Build mood with lighting:** Specify the lighting (e.g. golden hour, dramatic neon, soft diffuse light).
%s
The end goal is a single, concise one-paragraph prompt that will guide the AI to a stunning, high-quality image or video. Do not ask questions; produce the refined prompt directly.`

const promptBuilderVideoExtra = `6.  **Motion & dynamics:** Suggest camera movement (e.g. slow pan, drone shot, tracking) and subject movement to create a dynamic scene.
`

// GenerateCreativePrompt expands a bare idea into a refined prompt for
// the image or video models. target is "image" or "video".
func (c *Client) GenerateCreativePrompt(ctx context.Context, idea, target string) (string, error) {
	extra := ""
	if target == "video" {
		extra = promptBuilderVideoExtra
	}
	req := &geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{
			Text: fmt.Sprintf("Base idea: %q. Target: %s. Produce the refined prompt.", idea, target),
		}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{
			Text: fmt.Sprintf(promptBuilderInstruction, extra),
		}}},
	}
	var resp geminiResponse
	if err := c.post(ctx, "/models/"+string(TextModelFlash)+":generateContent", req, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}

// GenerateImage synthesizes one JPEG via the Imagen predict API.
func (c *Client) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (Image, error) {
	req := &imagenRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount:    1,
			OutputMimeType: "image/jpeg",
			AspectRatio:    string(aspect),
		},
	}
	var resp imagenResponse
	if err := c.post(ctx, "/models/"+imageModel+":predict", req, &resp); err != nil {
		return Image{}, err
	}
	if len(resp.Predictions) == 0 {
		return Image{}, errors.New("image generation returned no predictions")
	}
	data, err := codec.Decode(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return Image{}, fmt.Errorf("image payload: %w", err)
	}
	mime := resp.Predictions[0].MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return Image{Data: data, MIME: mime}, nil
}

const blendInstruction = `Primary task: create a single, seamless, highly realistic composite image. The result must look like one professionally shot photograph, not a collage. The target is premium advertising quality.

Key instructions for the AI model:
1.  **Seamless integration:** Your top priority is eliminating every visible seam or edge between the provided images. Transitions must be undetectable, as if the elements were digitally painted together.
2.  **Harmonize light & shadow:** Analyze the light source in each image and build one consistent lighting scheme across the scene. Shadows must fall realistically and highlights must match.
3.  **Color correction & grading:** Apply professional-grade color grading to unify all elements. Keep white balance, saturation, and hue consistent; aim for a cohesive, cinematic palette.
4.  **Texture & detail quality:** Preserve (and where needed enhance) the high-resolution detail and texture of the sources. Avoid blurry or low-quality regions; keep focus sharp and deliberate.
5.  **Honor the user's request:** With the technical foundation above in place, creatively integrate the user's specific request.
6.  **Final aspect ratio:** Produce the final image at aspect ratio %s.

User request: %q`

// BlendImages composes several source images into one photograph-like
// composite.
func (c *Client) BlendImages(ctx context.Context, prompt string, images []Image, aspect AspectRatio) (Image, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MimeType: img.MIME,
			Data:     codec.Encode(img.Data),
		}})
	}
	parts = append(parts, geminiPart{Text: fmt.Sprintf(blendInstruction, aspect, prompt)})

	req := &geminiRequest{
		Contents:         []geminiContent{{Parts: parts}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	}
	return c.imageContent(ctx, req)
}

// EditImage applies an instruction prompt to one or more images, with
// an optional overlay (logo) image. The prompt is always the last part.
func (c *Client) EditImage(ctx context.Context, prompt string, images []Image, logo *Image) (Image, error) {
	parts := make([]geminiPart, 0, len(images)+2)
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MimeType: img.MIME,
			Data:     codec.Encode(img.Data),
		}})
	}
	if logo != nil {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MimeType: logo.MIME,
			Data:     codec.Encode(logo.Data),
		}})
	}
	parts = append(parts, geminiPart{Text: prompt})

	req := &geminiRequest{
		Contents:         []geminiContent{{Parts: parts}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	}
	return c.imageContent(ctx, req)
}

func (c *Client) imageContent(ctx context.Context, req *geminiRequest) (Image, error) {
	var resp geminiResponse
	if err := c.post(ctx, "/models/"+blendModel+":generateContent", req, &resp); err != nil {
		return Image{}, err
	}
	inline := resp.inline()
	if inline == nil {
		return Image{}, errors.New("model returned no image")
	}
	data, err := codec.Decode(inline.Data)
	if err != nil {
		return Image{}, fmt.Errorf("image payload: %w", err)
	}
	return Image{Data: data, MIME: inline.MimeType}, nil
}

// GenerateVideo starts a long-running video generation, polls the
// operation until done, then fetches the resulting video.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, aspect VideoAspectRatio, seed *Image) ([]byte, error) {
	inst := veoInstance{Prompt: prompt}
	if seed != nil {
		inst.Image = &inlineVeo{
			BytesBase64Encoded: codec.Encode(seed.Data),
			MimeType:           seed.MIME,
		}
	}
	req := &veoRequest{
		Instances: []veoInstance{inst},
		Parameters: veoParameters{
			SampleCount: 1,
			Resolution:  "720p",
			AspectRatio: string(aspect),
		},
	}

	var op veoOperation
	if err := c.post(ctx, "/models/"+videoModel+":predictLongRunning", req, &op); err != nil {
		return nil, err
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		var next veoOperation
		if err := c.get(ctx, "/"+op.Name, &next); err != nil {
			return nil, err
		}
		next.Name = op.Name
		op = next
	}
	if op.Error != nil {
		return nil, fmt.Errorf("video generation failed: %s", op.Error.Message)
	}
	if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 ||
		op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI == "" {
		return nil, errors.New("video generation failed or returned no link")
	}
	return c.fetchVideo(ctx, op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI)
}

func (c *Client) fetchVideo(ctx context.Context, uri string) ([]byte, error) {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	httpReq, err := http.NewRequestWithContext(ctx, "GET", uri+sep+"key="+c.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create video fetch: %w", err)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch video: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// GenerateSpeech synthesizes text with a prebuilt voice and returns the
// base64-encoded raw PCM (24 kHz mono s16le) from the model.
func (c *Client) GenerateSpeech(ctx context.Context, text, voice string) (string, error) {
	req := &geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	}
	var resp geminiResponse
	if err := c.post(ctx, "/models/"+speechModel+":generateContent", req, &resp); err != nil {
		return "", err
	}
	inline := resp.inline()
	if inline == nil || inline.Data == "" {
		return "", errors.New("failed to generate audio")
	}
	return inline.Data, nil
}

const socialInstruction = `You are a social media marketing expert. Create engaging posts for multiple platforms based on the provided media and context.
- Write content for Instagram, Facebook, and X (formerly Twitter).
- Include relevant emoji.
- Include 3-5 relevant, trending hashtags.
- Adapt tone and length per platform:
    - **Facebook:** Longer, richer post. Develop the story behind the media, ask an engaging question to invite comments, and add informative detail. The goal is one comprehensive post that can start a discussion.
    - **Instagram:** Focus on a visually engaging caption and a short story.
    - **X (Twitter):** Keep it short, punchy, and shareable.`

// GenerateSocialPosts produces platform-specific post variants for a
// piece of media, described by its original prompt or context.
func (c *Client) GenerateSocialPosts(ctx context.Context, promptOrContext string, image *Image) ([]SocialPost, error) {
	parts := []geminiPart{}
	if image != nil {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MimeType: image.MIME,
			Data:     codec.Encode(image.Data),
		}})
	}
	parts = append(parts, geminiPart{
		Text: fmt.Sprintf("The original context or prompt for this media was: %q.\nGenerate social media posts based on it.", promptOrContext),
	})

	req := &geminiRequest{
		Contents:          []geminiContent{{Parts: parts}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: socialInstruction}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"posts": map[string]any{
						"type": "ARRAY",
						"items": map[string]any{
							"type": "OBJECT",
							"properties": map[string]any{
								"platform": map[string]any{"type": "STRING"},
								"content":  map[string]any{"type": "STRING"},
							},
						},
					},
				},
			},
		},
	}
	var resp geminiResponse
	if err := c.post(ctx, "/models/"+string(TextModelFlash)+":generateContent", req, &resp); err != nil {
		return nil, err
	}

	var out struct {
		Posts []SocialPost `json:"posts"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.text())), &out); err != nil {
		return nil, fmt.Errorf("social post response was not the expected JSON: %w", err)
	}
	return out.Posts, nil
}

const narrationInstruction = `You are a creative scriptwriter. Write a short, descriptive, engaging audio narration (around 2-3 sentences) for an image or video.
The narration should capture the mood, emotion, and heart of the story in the media. Do not literally describe what you see; create an atmosphere.
Output only the narration text, with no greeting or filler.`

// GenerateNarration writes a short narration script for a piece of
// media, described by its original prompt.
func (c *Client) GenerateNarration(ctx context.Context, prompt string, image *Image) (string, error) {
	parts := []geminiPart{}
	if image != nil {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MimeType: image.MIME,
			Data:     codec.Encode(image.Data),
		}})
	}
	parts = append(parts, geminiPart{
		Text: fmt.Sprintf("The original context or prompt for this media was: %q.\nGenerate an engaging audio narration script based on it.", prompt),
	})

	req := &geminiRequest{
		Contents:          []geminiContent{{Parts: parts}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: narrationInstruction}}},
	}
	var resp geminiResponse
	if err := c.post(ctx, "/models/"+string(TextModelFlash)+":generateContent", req, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, "POST", path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, "GET", path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.apiKey == "" {
		return ErrMissingKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	reqID := uuid.NewString()
	c.log.Debug("gemini request", "id", reqID, "method", method, "path", path)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debug("gemini response", "id", reqID, "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode != http.StatusOK {
		// The provider's message is surfaced verbatim for display.
		return fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
