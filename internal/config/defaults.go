package config

const (
	defaultDataDir              = "~/.local/share/showscout"
	defaultLogDir               = "~/.local/share/showscout/logs"
	defaultAPIBind              = "127.0.0.1:7319"
	defaultYouTubeBaseURL       = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTimeout       = 15
	defaultYouTubeRate          = 4.0
	defaultPodcastIndexBaseURL  = "https://api.podcastindex.org/api/1.0"
	defaultPodcastIndexTimeout  = 15
	defaultPodcastIndexRate     = 4.0
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "google/gemini-3-flash-preview"
	defaultLLMReferer           = "https://github.com/showscout/showscout"
	defaultLLMTitle             = "Showscout Contact Extractor"
	defaultLLMTimeoutSeconds    = 30
	defaultTargetCount          = 10
	defaultMaxQueries           = 24
	defaultExtractConcurrency   = 3
	defaultRecentContentLimit   = 5
	defaultDeepContentLimit     = 15
	defaultGuestScoreThreshold  = 40
	defaultScrapeTimeoutSeconds = 10
	defaultScrapeMaxBytes       = 512 * 1024
	defaultMonthlyLimit         = 50
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			TimeoutSeconds:    defaultYouTubeTimeout,
			RequestsPerSecond: defaultYouTubeRate,
		},
		PodcastIndex: PodcastIndex{
			BaseURL:           defaultPodcastIndexBaseURL,
			TimeoutSeconds:    defaultPodcastIndexTimeout,
			RequestsPerSecond: defaultPodcastIndexRate,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Discovery: Discovery{
			TargetCount:           defaultTargetCount,
			MaxQueries:            defaultMaxQueries,
			ExtractionConcurrency: defaultExtractConcurrency,
			RecentContentLimit:    defaultRecentContentLimit,
			DeepContentLimit:      defaultDeepContentLimit,
			GuestScoreThreshold:   defaultGuestScoreThreshold,
		},
		Scrape: Scrape{
			TimeoutSeconds: defaultScrapeTimeoutSeconds,
			MaxBytes:       defaultScrapeMaxBytes,
		},
		Quota: Quota{
			MonthlyLimit: defaultMonthlyLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
