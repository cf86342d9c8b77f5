package relay

// Service identity reported by the metadata and health endpoints.
const (
	ServiceName = "rayee-server"
	Version     = "2.0.0"
)

// AudioFilename is suggested to clients via Content-Disposition.
const AudioFilename = "rayee_response.mp3"

// endpoint binds a language tag to its route and description header.
type endpoint struct {
	Language   string
	Path       string
	TextHeader string
}

// endpoints lists one upload route per supported language. The header
// carries the base64 of the raw model output, pre-sanitization.
var endpoints = []endpoint{
	{Language: "am", Path: "/api-am", TextHeader: "X-Amharic-Text"},
	{Language: "ti", Path: "/api-ti", TextHeader: "X-Tigrinya-Text"},
}

// MetadataResponse is the GET / payload.
type MetadataResponse struct {
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Status      string            `json:"status"`
	Model       string            `json:"model"`
	Credentials int               `json:"credentials"`
	Endpoints   map[string]string `json:"endpoints"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status      string `json:"status"`
	Credentials int    `json:"credentials"`
	Model       string `json:"model"`
	Version     string `json:"version"`
}
