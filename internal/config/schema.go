package config

// Config holds auralens configuration.
// Stored at: ~/.auralens/config.yaml
type Config struct {
	API        APICfg              `mapstructure:"api" yaml:"api" json:"api"`
	Processing ProcessingCfg       `mapstructure:"processing" yaml:"processing" json:"processing"`
	Prompts    PromptsCfg          `mapstructure:"prompts" yaml:"prompts" json:"prompts"`
	Dirs       DirsCfg             `mapstructure:"dirs" yaml:"dirs" json:"dirs"`
	Models     map[string]ModelCfg `mapstructure:"models" yaml:"models,omitempty" json:"models,omitempty"`
}

// APICfg configures the VLM endpoint.
type APICfg struct {
	URL             string  `mapstructure:"url" yaml:"url" json:"url"`
	Key             string  `mapstructure:"key" yaml:"key" json:"key"` // supports ${ENV_VAR} syntax
	Model           string  `mapstructure:"model" yaml:"model" json:"model"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxTokens       int     `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	RepeatPenalty   float64 `mapstructure:"repeat_penalty" yaml:"repeat_penalty" json:"repeat_penalty"`
	PresencePenalty float64 `mapstructure:"presence_penalty" yaml:"presence_penalty" json:"presence_penalty"`
}

// ProcessingCfg configures page rendering and image preprocessing.
type ProcessingCfg struct {
	PDFDPI         int `mapstructure:"pdf_dpi" yaml:"pdf_dpi" json:"pdf_dpi"`
	MaxImagePixels int `mapstructure:"max_image_pixels" yaml:"max_image_pixels" json:"max_image_pixels"`
	JPEGQuality    int `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// PromptsCfg holds the OCR prompts sent with every page.
type PromptsCfg struct {
	System string `mapstructure:"system" yaml:"system" json:"system"`
	User   string `mapstructure:"user" yaml:"user" json:"user"`
}

// DirsCfg configures the inbox/outbox directories for watch mode.
type DirsCfg struct {
	Inbox  string `mapstructure:"inbox" yaml:"inbox" json:"inbox"`
	Outbox string `mapstructure:"outbox" yaml:"outbox" json:"outbox"`
}

// ModelCfg carries per-model reasoning settings. Models that support a
// thinking mode get their token budget extended by ThinkingBudget.
type ModelCfg struct {
	EnableThinking bool `mapstructure:"enable_thinking" yaml:"enable_thinking" json:"enable_thinking"`
	ThinkingBudget int  `mapstructure:"thinking_budget" yaml:"thinking_budget" json:"thinking_budget"`
}

// DefaultSystemPrompt is the OCR instruction sent as the system message.
const DefaultSystemPrompt = "You are an OCR assistant. Extract ALL text from this image exactly as it appears. " +
	"Preserve paragraph breaks, line breaks, and formatting. " +
	"Do not add commentary, interpretation, or markdown formatting. " +
	"Output only the raw extracted text."

// DefaultUserPrompt is the per-page instruction sent as the user message.
const DefaultUserPrompt = "Extract all text from this page."

// DefaultThinkingBudget is the extra token allowance for models running with
// a thinking mode enabled.
const DefaultThinkingBudget = 4096

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APICfg{
			URL:             "http://localhost:3000/api/chat/completions",
			Key:             "${AURALENS_API_KEY}",
			TimeoutSeconds:  120,
			MaxTokens:       4096,
			Temperature:     0.0,
			RepeatPenalty:   1.2,
			PresencePenalty: 0.5,
		},
		Processing: ProcessingCfg{
			PDFDPI:         150,
			MaxImagePixels: 1_003_520,
			JPEGQuality:    90,
		},
		Prompts: PromptsCfg{
			System: DefaultSystemPrompt,
			User:   DefaultUserPrompt,
		},
	}
}

// ModelSettings returns the reasoning settings for the configured model.
func (c *Config) ModelSettings() ModelCfg {
	m, ok := c.Models[c.API.Model]
	if !ok {
		return ModelCfg{}
	}
	if m.EnableThinking && m.ThinkingBudget == 0 {
		m.ThinkingBudget = DefaultThinkingBudget
	}
	return m
}
