package speech

import (
	"context"

	"github.com/wujunwei928/edge-tts-go/edge_tts"
)

// Engine abstracts the external speech-synthesis service. Transports and
// tests inject stubs; production uses the Edge TTS implementation.
type Engine interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// EdgeEngine synthesizes speech through the Microsoft Edge TTS service.
type EdgeEngine struct{}

// NewEdgeEngine returns the production Edge TTS engine.
func NewEdgeEngine() *EdgeEngine {
	return &EdgeEngine{}
}

// Synthesize produces MP3 audio for text using the given voice.
func (e *EdgeEngine) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voice))
	if err != nil {
		return nil, err
	}

	return communicate.Stream()
}
