package relay

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rayee-server-go/internal/domain/describe"
	domainimage "rayee-server-go/internal/domain/image"
	"rayee-server-go/internal/domain/sanitize"
	"rayee-server-go/internal/platform/config"
	"rayee-server-go/internal/platform/errors"
	"rayee-server-go/internal/platform/logging"
	httptransport "rayee-server-go/internal/transport/http"
)

// Describer produces a description for an uploaded frame.
type Describer interface {
	Describe(ctx context.Context, image describe.ImagePayload, inst describe.InstructionSet) (string, error)
}

// Synthesizer turns sanitized text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Service is the HTTP transport for the image-to-audio relay.
type Service struct {
	config      *config.Config
	logger      *logging.Logger
	describer   Describer
	synthesizer Synthesizer
	validator   *domainimage.Validator
	credentials int
}

// NewService wires the relay endpoints over the domain components.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	describer Describer,
	synthesizer Synthesizer,
	credentials int,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "relay.new", "config is required")
	}
	if describer == nil {
		return nil, errors.New(errors.KindConfig, "relay.new", "describer is required")
	}
	if synthesizer == nil {
		return nil, errors.New(errors.KindConfig, "relay.new", "synthesizer is required")
	}

	return &Service{
		config:      cfg,
		logger:      logger,
		describer:   describer,
		synthesizer: synthesizer,
		validator:   domainimage.NewValidator(),
		credentials: credentials,
	}, nil
}

// Register attaches the relay routes to the engine.
func (s *Service) Register(ctx context.Context, engine *gin.Engine) error {
	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)

	for _, ep := range endpoints {
		ep := ep
		engine.POST(ep.Path, func(c *gin.Context) {
			s.handleRelay(c, ep)
		})
	}

	s.logger.InfoTag("HTTP", "relay routes registered for languages %v", describe.SupportedLanguages())
	return nil
}

func (s *Service) handleRoot(c *gin.Context) {
	eps := make(map[string]string, len(endpoints)+1)
	for _, ep := range endpoints {
		eps["POST "+ep.Path] = fmt.Sprintf("analyze image and return %s audio description", ep.Language)
	}
	eps["GET /health"] = "health check endpoint"

	c.JSON(http.StatusOK, MetadataResponse{
		Service:     ServiceName,
		Version:     Version,
		Status:      "running",
		Model:       s.config.Vision.ModelName,
		Credentials: s.credentials,
		Endpoints:   eps,
	})
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Credentials: s.credentials,
		Model:       s.config.Vision.ModelName,
		Version:     Version,
	})
}

// handleRelay runs one upload through describe -> sanitize -> synthesize
// and streams the audio back with the description headers.
func (s *Service) handleRelay(c *gin.Context, ep endpoint) {
	payload, err := s.parseUpload(c)
	if err != nil {
		s.logger.WarnTag("HTTP", "upload rejected: %v", err)
		httptransport.RespondDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	inst, ok := describe.InstructionsFor(ep.Language)
	if !ok {
		httptransport.RespondDetail(c, http.StatusInternalServerError, "no instruction set for language "+ep.Language)
		return
	}

	rawText, err := s.describer.Describe(c.Request.Context(), payload, inst)
	if err != nil {
		s.logger.ErrorTag("Describe", "description failed: %v", err)
		httptransport.RespondDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	cleanText := sanitize.Clean(rawText)

	audio, err := s.synthesizer.Synthesize(c.Request.Context(), cleanText, ep.Language)
	if err != nil {
		s.logger.ErrorTag("TTS", "synthesis failed: %v", err)
		httptransport.RespondDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+AudioFilename)
	c.Header(ep.TextHeader, base64.StdEncoding.EncodeToString([]byte(rawText)))
	// Compatibility stub for clients that still read the removed
	// English translation field. Written to the header map directly:
	// gin's Header helper deletes the key on an empty value.
	c.Writer.Header().Set("X-English-Text", "")
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// parseUpload extracts and validates the multipart image field. It runs
// entirely before any upstream call: a bad upload costs zero credits.
func (s *Service) parseUpload(c *gin.Context) (describe.ImagePayload, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return describe.ImagePayload{}, fmt.Errorf("no image file provided")
	}
	defer file.Close()

	if header.Filename == "" {
		return describe.ImagePayload{}, fmt.Errorf("image filename is required")
	}
	if header.Size > domainimage.MaxFileSize {
		return describe.ImagePayload{}, fmt.Errorf("image exceeds maximum size")
	}

	raw, err := io.ReadAll(io.LimitReader(file, domainimage.MaxFileSize+1))
	if err != nil {
		return describe.ImagePayload{}, fmt.Errorf("read image upload: %w", err)
	}

	format, err := s.validator.Validate(raw, domainimage.DetectFormatFromFilename(header.Filename))
	if err != nil {
		return describe.ImagePayload{}, err
	}

	s.logger.DebugTag("HTTP", "received image %s (%d bytes, %s)", header.Filename, len(raw), format)

	return describe.ImagePayload{Data: raw, Format: format}, nil
}
