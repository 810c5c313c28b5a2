package genai

// AspectRatio values accepted by the image models.
type AspectRatio string

const (
	AspectSquare   AspectRatio = "1:1"
	AspectWide     AspectRatio = "16:9"
	AspectTall     AspectRatio = "9:16"
	AspectClassic  AspectRatio = "4:3"
	AspectPortrait AspectRatio = "3:4"
)

// VideoAspectRatio values accepted by the video model.
type VideoAspectRatio string

const (
	VideoWide VideoAspectRatio = "16:9"
	VideoTall VideoAspectRatio = "9:16"
)

// TextModel selects the tier used for text generation.
type TextModel string

const (
	TextModelPro   TextModel = "gemini-2.5-pro"
	TextModelFlash TextModel = "gemini-2.5-flash"
	TextModelLite  TextModel = "gemini-flash-lite-latest"
)

// Image is an inline image handed to the blend/edit/video calls.
type Image struct {
	Data []byte
	MIME string
}

// SocialPost is one platform-specific post variant.
type SocialPost struct {
	Platform string `json:"platform"`
	Content  string `json:"content"`
}

// Gemini wire types.

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ThinkingConfig     *thinkingConfig `json:"thinkingConfig,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any  `json:"responseSchema,omitempty"`
	SpeechConfig       *speechConfig   `json:"speechConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// text concatenates the text parts of the first candidate.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// inline returns the first inline-data part of the first candidate.
func (r *geminiResponse) inline() *inlineData {
	if len(r.Candidates) == 0 {
		return nil
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			return p.InlineData
		}
	}
	return nil
}

// Imagen predict API.

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount    int    `json:"sampleCount"`
	OutputMimeType string `json:"outputMimeType,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// Veo long-running operation API.

type veoRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoInstance struct {
	Prompt string     `json:"prompt"`
	Image  *inlineVeo `json:"image,omitempty"`
}

type inlineVeo struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoParameters struct {
	SampleCount int    `json:"sampleCount"`
	Resolution  string `json:"resolution,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type veoOperation struct {
	Name     string       `json:"name"`
	Done     bool         `json:"done"`
	Response *veoResponse `json:"response,omitempty"`
	Error    *veoError    `json:"error,omitempty"`
}

type veoResponse struct {
	GenerateVideoResponse struct {
		GeneratedSamples []veoSample `json:"generatedSamples"`
	} `json:"generateVideoResponse"`
}

type veoSample struct {
	Video struct {
		URI string `json:"uri"`
	} `json:"video"`
}

type veoError struct {
	Message string `json:"message"`
}
