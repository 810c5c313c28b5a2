package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/codec"
)

const defaultLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

const liveModel = "models/gemini-2.5-flash-native-audio-preview-09-2025"

// LiveSession is a duplex streaming session: raw PCM audio goes up,
// incremental transcriptions come back via the callback passed to Live.
type LiveSession struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

type liveClientMessage struct {
	Setup         *liveSetup         `json:"setup,omitempty"`
	RealtimeInput *liveRealtimeInput `json:"realtimeInput,omitempty"`
}

type liveSetup struct {
	Model                   string            `json:"model"`
	GenerationConfig        *generationConfig `json:"generationConfig,omitempty"`
	InputAudioTranscription struct{}          `json:"inputAudioTranscription"`
}

type liveRealtimeInput struct {
	Audio *liveAudioChunk `json:"audio,omitempty"`
}

type liveAudioChunk struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type liveServerMessage struct {
	SetupComplete *struct{} `json:"setupComplete,omitempty"`
	ServerContent *struct {
		InputTranscription *struct {
			Text string `json:"text"`
		} `json:"inputTranscription,omitempty"`
		TurnComplete bool `json:"turnComplete,omitempty"`
	} `json:"serverContent,omitempty"`
}

// Live opens a transcription session. onText receives incremental
// transcribed text as the service produces it. The session stays open
// until Close is called, the context is cancelled, or the server ends
// the stream.
func (c *Client) Live(ctx context.Context, onText func(text string)) (*LiveSession, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}

	conn, _, err := websocket.Dial(ctx, c.liveURL+"?key="+c.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("dial live session: %w", err)
	}
	// Audio frames are small but frequent; transcripts are tiny.
	conn.SetReadLimit(1 << 20)

	setup := liveClientMessage{Setup: &liveSetup{
		Model: liveModel,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}}
	data, err := json.Marshal(setup)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "setup encode failed")
		return nil, fmt.Errorf("encode setup: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		conn.Close(websocket.StatusInternalError, "setup write failed")
		return nil, fmt.Errorf("send setup: %w", err)
	}

	s := &LiveSession{conn: conn, done: make(chan struct{})}
	go s.readLoop(ctx, c, onText)
	c.log.Info("transcription session opened")
	return s, nil
}

func (s *LiveSession) readLoop(ctx context.Context, c *Client, onText func(string)) {
	defer close(s.done)
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed && !errors.Is(err, context.Canceled) {
				c.log.Error("transcription session error", "error", err)
			} else {
				c.log.Info("transcription session closed")
			}
			return
		}
		var msg liveServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("unparsable live message", "error", err)
			continue
		}
		if msg.ServerContent != nil && msg.ServerContent.InputTranscription != nil {
			if t := msg.ServerContent.InputTranscription.Text; t != "" {
				onText(t)
			}
		}
	}
}

// SendAudio streams one chunk of raw 16-bit little-endian PCM at
// 16 kHz mono to the service.
func (s *LiveSession) SendAudio(ctx context.Context, pcm []byte) error {
	msg := liveClientMessage{RealtimeInput: &liveRealtimeInput{
		Audio: &liveAudioChunk{
			Data:     codec.Encode(pcm),
			MimeType: "audio/pcm;rate=16000",
		},
	}}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode audio chunk: %w", err)
	}
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("send audio chunk: %w", err)
	}
	return nil
}

// Close ends the session and waits for the read loop to drain.
func (s *LiveSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.conn.Close(websocket.StatusNormalClosure, "done")
	<-s.done
	return err
}
