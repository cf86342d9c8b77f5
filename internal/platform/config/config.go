package config

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Vision VisionConfig `yaml:"vision"`
	TTS    TTSConfig    `yaml:"tts"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// VisionConfig carries the fixed model identifier and generation
// parameters used for every describe attempt.
type VisionConfig struct {
	BaseURL        string  `yaml:"url"`
	ModelName      string  `yaml:"model_name"`
	Temperature    float64 `yaml:"temperature"`
	TopP           float64 `yaml:"top_p"`
	RequestTimeout string  `yaml:"request_timeout"`
}

type TTSConfig struct {
	// Voices maps a two-letter language tag to an Edge TTS voice ID.
	// Languages sharing a script may share a voice.
	Voices map[string]string `yaml:"voices"`
}
