package describe

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"rayee-server-go/internal/domain/credential"
	"rayee-server-go/internal/platform/config"
	"rayee-server-go/internal/platform/errors"
	"rayee-server-go/internal/platform/logging"

	"github.com/sashabaranov/go-openai"
)

// ImagePayload carries the raw bytes of one still frame plus its
// detected format. Payloads are request-scoped and never retained.
type ImagePayload struct {
	Data   []byte
	Format string
}

// attemptFn issues a single describe request against one credential.
// It exists as a field so tests can substitute the upstream call.
type attemptFn func(ctx context.Context, apiKey string, image ImagePayload, inst InstructionSet) (string, error)

// Describer produces a natural-language description for an image by
// calling the remote vision model, rotating through the credential pool
// on failure. Each request runs its own rotation loop; the describer
// holds no mutable state across calls.
type Describer struct {
	cfg    config.VisionConfig
	pool   *credential.Pool
	logger *logging.Logger

	invoke attemptFn
}

// NewDescriber builds a describer bound to the loaded credential pool
// and the fixed model configuration.
func NewDescriber(cfg config.VisionConfig, pool *credential.Pool, logger *logging.Logger) (*Describer, error) {
	if pool == nil || pool.Len() == 0 {
		return nil, errors.New(errors.KindCredential, "describe.new", "credential pool is empty")
	}

	d := &Describer{
		cfg:    cfg,
		pool:   pool,
		logger: logger,
	}
	d.invoke = d.callVisionModel
	return d, nil
}

// Describe runs the sequential failover loop: credentials are tried in
// fixed pool order, first success wins, and the last attempt's error is
// surfaced when every credential fails. There is no backoff between
// attempts and no adaptive reordering.
func (d *Describer) Describe(ctx context.Context, image ImagePayload, inst InstructionSet) (string, error) {
	if len(image.Data) == 0 {
		return "", errors.New(errors.KindDescribe, "describe", "empty image payload")
	}

	var lastErr error
	for i := 0; i < d.pool.Len(); i++ {
		text, err := d.invoke(ctx, d.pool.At(i), image, inst)
		if err == nil {
			trimmed := strings.TrimSpace(text)
			if trimmed != "" {
				d.logger.DebugTag("Describe", "attempt %d/%d succeeded (%d chars)", i+1, d.pool.Len(), len(trimmed))
				return trimmed, nil
			}
			// An empty-but-successful response counts as an attempt
			// failure so the remaining credentials still get a chance.
			err = errors.New(errors.KindDescribe, "describe.attempt", "model returned empty description")
		}

		lastErr = err
		d.logger.WarnTag("Describe", "attempt %d/%d failed: %v", i+1, d.pool.Len(), err)

		if ctx.Err() != nil {
			return "", errors.Wrap(errors.KindDescribe, "describe", "request cancelled", ctx.Err())
		}
	}

	if lastErr == nil {
		return "", errors.New(errors.KindCredential, "describe.rotate", "all credentials exhausted")
	}
	return "", &errors.Error{
		Kind:    errors.KindCredential,
		Op:      "describe.rotate",
		Message: fmt.Sprintf("all %d credentials exhausted", d.pool.Len()),
		Cause:   lastErr,
	}
}

// IsExhausted reports whether err represents full credential exhaustion.
func IsExhausted(err error) bool {
	return errors.IsKind(err, errors.KindCredential)
}

// callVisionModel issues one request with a client bound to a single
// credential. The client is a fresh, fully-parameterized value per
// attempt; nothing shared is reconfigured between concurrent requests.
func (d *Describer) callVisionModel(ctx context.Context, apiKey string, image ImagePayload, inst InstructionSet) (string, error) {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = d.cfg.BaseURL
	client := openai.NewClientWithConfig(clientConfig)

	attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout())
	defer cancel()

	format := image.Format
	if format == "" {
		format = "jpeg"
	}
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(image.Data))

	resp, err := client.CreateChatCompletion(
		attemptCtx,
		openai.ChatCompletionRequest{
			Model: d.cfg.ModelName,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: inst.Prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: dataURL,
							},
						},
					},
				},
			},
			Temperature: float32(d.cfg.Temperature),
			TopP:        float32(d.cfg.TopP),
		},
	)
	if err != nil {
		return "", fmt.Errorf("vision API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision API returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
