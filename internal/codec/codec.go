package codec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrDecode is wrapped by all malformed-input errors in this package.
var ErrDecode = errors.New("malformed input")

// Decode converts standard (padded) base64 text to raw bytes.
func Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	return b, nil
}

// Encode converts raw bytes to standard (padded) base64 text.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// PCM16ToFloat interprets data as little-endian signed 16-bit samples
// interleaved by channel and returns one []float32 per channel, scaled
// to [-1, 1] by division by 32768.
func PCM16ToFloat(data []byte, channels int) ([][]float32, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count %d", ErrDecode, channels)
	}
	frameSize := channels * 2
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-channel frames", ErrDecode, len(data), channels)
	}
	frames := len(data) / frameSize
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(data[off : off+2]))
			out[ch][i] = float32(sample) / 32768.0
		}
	}
	return out, nil
}

// WAVBlob wraps raw PCM in a canonical 44-byte RIFF/WAVE header. The
// PCM payload is copied through untouched, so any reader of the plain
// PCM WAV layout can parse the result.
func WAVBlob(pcm []byte, channels, sampleRate, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := make([]byte, 44+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))

	copy(buf[44:], pcm)
	return buf
}
