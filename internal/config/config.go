package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects where summarization results are persisted.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres"
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	URL    string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. When both fields are empty
// the API is served without authentication.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	// TokenHash is a bcrypt hash of a static API token
	TokenHash            string `mapstructure:"token_hash" validate:"omitempty,startswith=$2"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=525600"`
}

// Enabled reports whether any authentication method is configured.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || a.TokenHash != ""
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider          string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	Model             string `mapstructure:"model" validate:"required"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey      string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	OpenAIBaseURL     string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	PromptsFile       string `mapstructure:"prompts_file"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	BeamWidth         int    `mapstructure:"beam_width" validate:"gte=1,lte=8"`
	MaxLoops          int    `mapstructure:"max_loops" validate:"gte=0,lte=10"`
	AcceptScore       int    `mapstructure:"accept_score" validate:"gte=0,lte=4"`
}

// RetryDelay returns the base retry delay as a duration.
func (l LLMConfig) RetryDelay() time.Duration {
	return time.Duration(l.RetryDelaySeconds) * time.Second
}

// TaskConfig controls the background task engine.
type TaskConfig struct {
	WorkerCount     int           `mapstructure:"worker_count" validate:"gte=1,lte=64"`
	MaxQueueDepth   int           `mapstructure:"max_queue_depth" validate:"gte=0"`
	Retention       time.Duration `mapstructure:"retention" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
	PollInterval    time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	DefaultWait     time.Duration `mapstructure:"default_wait" validate:"gt=0"`
	MaxWait         time.Duration `mapstructure:"max_wait" validate:"gtefield=DefaultWait,lte=600s"`
	// ShutdownTimeout bounds the drain of queued and running tasks on
	// shutdown; zero waits until every task has finished
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}
