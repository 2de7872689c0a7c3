package model

import "time"

// Config is the full runtime configuration, loadable from flags, RISKSCAN_*
// environment variables, or ~/.riskscan/config.yaml.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Limits      LimitsConfig      `yaml:"limits" mapstructure:"limits"`
	Ingest      IngestConfig      `yaml:"ingest" mapstructure:"ingest"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Entitlement EntitlementConfig `yaml:"entitlement" mapstructure:"entitlement"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // trace, debug, info, warn, error
}

// LimitsConfig bounds per-caller request volume and upload size.
type LimitsConfig struct {
	MaxFileBytes    int64         `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	RateMaxRequests int           `yaml:"rate_max_requests" mapstructure:"rate_max_requests"`
	RateWindow      time.Duration `yaml:"rate_window" mapstructure:"rate_window"`
}

// IngestConfig bounds the sheet/header scans so pathological workbooks cannot
// dominate request cost.
type IngestConfig struct {
	MaxSheets      int `yaml:"max_sheets" mapstructure:"max_sheets"`
	SampleRows     int `yaml:"sample_rows" mapstructure:"sample_rows"`
	SampleCols     int `yaml:"sample_cols" mapstructure:"sample_cols"`
	HeaderScanRows int `yaml:"header_scan_rows" mapstructure:"header_scan_rows"`
}

// LLMConfig configures the external generation service.
type LLMConfig struct {
	Provider      string        `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" = disabled
	Model         string        `yaml:"model" mapstructure:"model"`
	APIKey        string        `yaml:"-" mapstructure:"-"` // from OPENAI_API_KEY only, never from file
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens     int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Attempts      int           `yaml:"attempts" mapstructure:"attempts"`
	ParseCooldown time.Duration `yaml:"parse_cooldown" mapstructure:"parse_cooldown"`
	QuotaCooldown time.Duration `yaml:"quota_cooldown" mapstructure:"quota_cooldown"`
	// RequestsPerSecond throttles outbound calls across all requests.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// EntitlementConfig configures the tenant entitlement resolver.
type EntitlementConfig struct {
	ResolverURL string        `yaml:"resolver_url" mapstructure:"resolver_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	// AllowAll bypasses the resolver; used by the local analyze command.
	AllowAll bool `yaml:"allow_all" mapstructure:"allow_all"`
}

// DefaultConfig returns the built-in defaults. Every option has a safe
// default except the API credential, whose absence surfaces on first AI use.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  2 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Limits: LimitsConfig{
			MaxFileBytes:    12 * 1024 * 1024,
			RateMaxRequests: 25,
			RateWindow:      10 * time.Minute,
		},
		Ingest: IngestConfig{
			MaxSheets:      8,
			SampleRows:     60,
			SampleCols:     30,
			HeaderScanRows: 30,
		},
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			Timeout:           45 * time.Second,
			MaxTokens:         4000,
			Attempts:          2,
			ParseCooldown:     30 * time.Second,
			QuotaCooldown:     35 * time.Second,
			RequestsPerSecond: 2,
		},
		Entitlement: EntitlementConfig{
			CacheTTL: 5 * time.Minute,
		},
	}
}
