package model

import "time"

// ================ Config ================
type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"SERVER_PORT" default:"4000"`
	StaticDir    string        `envconfig:"SERVER_STATIC_DIR" default:"public"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
}

type CatalogConfig struct {
	Path     string `envconfig:"CATALOG_PATH" default:"public/products.json"`
	ImageDir string `envconfig:"CATALOG_IMAGE_DIR" default:"images"`
	ImageExt string `envconfig:"CATALOG_IMAGE_EXT" default:".jpg"`
	Currency string `envconfig:"CATALOG_CURRENCY" default:"₹"`
}

type FallbackModelConfig struct {
	Model       string        `envconfig:"FALLBACK_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int           `envconfig:"FALLBACK_MAX_TOKENS" default:"1024"`
	Temperature float32       `envconfig:"FALLBACK_TEMPERATURE" default:"0.4"`
	Timeout     time.Duration `envconfig:"FALLBACK_TIMEOUT" default:"15s"`
	// MaxToolCalls caps catalog tool executions per fallback answer.
	MaxToolCalls int `envconfig:"FALLBACK_MAX_TOOL_CALLS" default:"3"`
}

type AssistantPromptConfig struct {
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"clothing store"`
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"ShopBot"`
}

type SessionConfig struct {
	Store string        `envconfig:"SESSION_STORE" default:"memory"`
	TTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	// MaxTurns bounds how many user/assistant exchanges reach the fallback model.
	MaxTurns int `envconfig:"CONVERSATION_MAX_TURNS" default:"6"`
	// MaxPendingMisses is how many unresolved product names end an add-to-cart wait.
	MaxPendingMisses int `envconfig:"DIALOG_MAX_PENDING_MISSES" default:"3"`
}

// MaxMessages is the transcript length that holds MaxTurns exchanges.
func (c SessionConfig) MaxMessages() int {
	if c.MaxTurns <= 0 {
		return 0
	}
	return 2 * c.MaxTurns
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)
