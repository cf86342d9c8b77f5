package config

// DefaultConfig returns the built-in configuration used when no override
// file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Vision: VisionConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			ModelName:      "meta-llama/llama-4-maverick-17b-128e-instruct",
			Temperature:    0.7,
			TopP:           0.9,
			RequestTimeout: "30s",
		},
		TTS: TTSConfig{
			// Tigrinya has no direct voice; it shares the Geʽez script
			// with Amharic so both tags render with the Amharic voice.
			Voices: map[string]string{
				"am": "am-ET-MekdesNeural",
				"ti": "am-ET-MekdesNeural",
			},
		},
	}
}
