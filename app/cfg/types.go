package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port        string
	OutletsFile string

	// LLM service configuration
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	LLMTimeout int

	// Fetcher configuration
	UserAgent    string
	FetchTimeout int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
