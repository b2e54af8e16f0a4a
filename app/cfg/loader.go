package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./sinodesk.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	OutletsFile string `long:"outlets-file" env:"OUTLETS_FILE" description:"YAML file with tracked source outlets to register at startup (optional)"`

	// LLM service configuration
	LLMBaseURL string `long:"llm-base-url" env:"LLM_BASE_URL" default:"https://api.deepseek.com" description:"Base URL of the OpenAI-compatible LLM API"`
	LLMModel   string `long:"llm-model" env:"LLM_MODEL" default:"deepseek-chat" description:"Model name for translation and extraction calls"`
	LLMAPIKey  string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the LLM service (required)" required:"true"`
	LLMTimeout int    `long:"llm-timeout" env:"LLM_TIMEOUT" default:"120" description:"LLM request timeout in seconds"`

	// Fetcher configuration
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent string for article fetches"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Article fetch timeout in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Shanghai)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:       raw.DBPath,
		Port:         raw.Port,
		OutletsFile:  raw.OutletsFile,
		LLMBaseURL:   raw.LLMBaseURL,
		LLMModel:     raw.LLMModel,
		LLMAPIKey:    raw.LLMAPIKey,
		LLMTimeout:   raw.LLMTimeout,
		UserAgent:    raw.UserAgent,
		FetchTimeout: raw.FetchTimeout,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
