// Package speech wraps the external text-to-speech engine behind a
// per-language voice table.
package speech

import (
	"context"

	"rayee-server-go/internal/platform/config"
	"rayee-server-go/internal/platform/errors"
	"rayee-server-go/internal/platform/logging"
)

// Synthesizer turns sanitized description text into encoded audio. A
// language without direct voice support is rendered with the voice of a
// related language sharing its writing system (the am/ti mapping).
type Synthesizer struct {
	voices map[string]string
	engine Engine
	logger *logging.Logger
}

// NewSynthesizer builds a synthesizer over the configured voice table.
func NewSynthesizer(cfg config.TTSConfig, engine Engine, logger *logging.Logger) (*Synthesizer, error) {
	if len(cfg.Voices) == 0 {
		return nil, errors.New(errors.KindConfig, "speech.new", "no TTS voices configured")
	}
	if engine == nil {
		engine = NewEdgeEngine()
	}
	return &Synthesizer{
		voices: cfg.Voices,
		engine: engine,
		logger: logger,
	}, nil
}

// Synthesize produces encoded speech bytes for text in the given
// language. Any engine failure is terminal for the request; there is no
// fallback voice and no retry.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if text == "" {
		return nil, errors.New(errors.KindSynthesis, "speech.synthesize", "text cannot be empty")
	}

	voice, ok := s.voices[language]
	if !ok {
		return nil, errors.New(errors.KindSynthesis, "speech.synthesize", "no voice mapped for language "+language)
	}

	audio, err := s.engine.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "speech.synthesize", "speech engine failed", err)
	}
	if len(audio) == 0 {
		return nil, errors.New(errors.KindSynthesis, "speech.synthesize", "speech engine returned no audio")
	}

	s.logger.DebugTag("TTS", "synthesized %d bytes for language %s (voice %s)", len(audio), language, voice)
	return audio, nil
}

// Voice reports the voice ID mapped to a language tag.
func (s *Synthesizer) Voice(language string) (string, bool) {
	voice, ok := s.voices[language]
	return voice, ok
}
