package model

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunable parameters. Every field maps to a flat viper key
// so each one can be set via a VERIDEX_* environment variable or the config
// file; flags override both.
type Config struct {
	// DataDir is the directory holding the category logs, state file and
	// lock marker.
	DataDir string `yaml:"data_dir"`

	// LockTimeout bounds how long a writer spin-waits for the store lock.
	LockTimeout time.Duration `yaml:"lock_timeout"`

	Collector CollectorConfig `yaml:"collector"`
	Validator ValidatorConfig `yaml:"validator"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Audit     AuditConfig     `yaml:"audit"`
	LLM       LLMConfig       `yaml:"llm"`
}

// CollectorConfig tunes the continuous collection loop
type CollectorConfig struct {
	Interval     time.Duration `yaml:"interval"`
	MaxCycles    int           `yaml:"max_cycles"` // 0 means run forever
	SearchURL    string        `yaml:"search_url"`
	UserAgent    string        `yaml:"user_agent"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	MaxPageBytes int64         `yaml:"max_page_bytes"`
	// MaxPageChars bounds the visible text handed to the classifier.
	MaxPageChars  int           `yaml:"max_page_chars"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	RateBurst     int           `yaml:"rate_burst"`
	CacheDir      string        `yaml:"cache_dir"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	HTTPProxy     string        `yaml:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy"`
	Queries       []string      `yaml:"queries"`
}

// ValidatorConfig tunes one validation engine run
type ValidatorConfig struct {
	WindowSize   int `yaml:"window_size"`
	MaxQuestions int `yaml:"max_questions"`
}

// SchedulerConfig tunes the trigger watchdog
type SchedulerConfig struct {
	PollInterval   time.Duration `yaml:"poll_interval"`
	BatchThreshold int           `yaml:"batch_threshold"`
	MaxAge         time.Duration `yaml:"max_age"`
}

// AuditConfig tunes the FACT source re-check
type AuditConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxWorkers int           `yaml:"max_workers"`
}

// LLMConfig configures the classifier endpoint. BaseURL supports local
// OpenAI-compatible servers (Ollama, text-generation-webui).
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
	BaseURL  string `yaml:"base_url"`
	Timeout  int    `yaml:"timeout"` // seconds
}

// DefaultQueries seed the collector's rotation until a corpus-specific set
// is configured.
var DefaultQueries = []string{
	"integrated information theory consciousness",
	"global workspace theory evidence",
	"neural correlates of consciousness recent findings",
	"panpsychism critiques philosophy of mind",
	"default mode network and self awareness",
	"anesthesia and consciousness biomarkers",
	"sleep dreaming lucidity neuroscience",
	"attention schema theory summary",
	"free energy principle consciousness",
	"ai consciousness debate current arguments",
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		DataDir:     "data",
		LockTimeout: 30 * time.Second,
		Collector: CollectorConfig{
			Interval:      10 * time.Second,
			SearchURL:     "http://127.0.0.1:8080",
			UserAgent:     "veridex/0.1 (+https://github.com/ppetrenko/veridex)",
			HTTPTimeout:   20 * time.Second,
			MaxPageBytes:  2_000_000,
			MaxPageChars:  8000,
			RatePerSecond: 1.0,
			RateBurst:     3,
			CacheDir:      "data/cache",
			CacheTTL:      1 * time.Hour,
			Queries:       DefaultQueries,
		},
		Validator: ValidatorConfig{
			WindowSize:   50,
			MaxQuestions: 5,
		},
		Scheduler: SchedulerConfig{
			PollInterval:   60 * time.Second,
			BatchThreshold: 25,
			MaxAge:         6 * time.Hour,
		},
		Audit: AuditConfig{
			Timeout:    10 * time.Second,
			MaxWorkers: 10,
		},
		LLM: LLMConfig{
			Provider: "local",
			Model:    "local",
			BaseURL:  "http://127.0.0.1:5000/v1",
			Timeout:  40,
		},
	}
}

// RegisterDefaults seeds viper with the flat key set so AutomaticEnv picks
// up VERIDEX_* overrides even for keys never set explicitly.
func RegisterDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("lock_timeout", d.LockTimeout)
	v.SetDefault("collector_interval", d.Collector.Interval)
	v.SetDefault("collector_max_cycles", d.Collector.MaxCycles)
	v.SetDefault("search_url", d.Collector.SearchURL)
	v.SetDefault("user_agent", d.Collector.UserAgent)
	v.SetDefault("http_timeout", d.Collector.HTTPTimeout)
	v.SetDefault("max_page_bytes", d.Collector.MaxPageBytes)
	v.SetDefault("max_page_chars", d.Collector.MaxPageChars)
	v.SetDefault("rate_per_second", d.Collector.RatePerSecond)
	v.SetDefault("rate_burst", d.Collector.RateBurst)
	v.SetDefault("cache_dir", d.Collector.CacheDir)
	v.SetDefault("cache_ttl", d.Collector.CacheTTL)
	v.SetDefault("http_proxy", d.Collector.HTTPProxy)
	v.SetDefault("https_proxy", d.Collector.HTTPSProxy)
	v.SetDefault("window_size", d.Validator.WindowSize)
	v.SetDefault("max_questions", d.Validator.MaxQuestions)
	v.SetDefault("poll_interval", d.Scheduler.PollInterval)
	v.SetDefault("batch_threshold", d.Scheduler.BatchThreshold)
	v.SetDefault("max_age", d.Scheduler.MaxAge)
	v.SetDefault("audit_timeout", d.Audit.Timeout)
	v.SetDefault("audit_workers", d.Audit.MaxWorkers)
	v.SetDefault("llm_provider", d.LLM.Provider)
	v.SetDefault("llm_model", d.LLM.Model)
	v.SetDefault("llm_base_url", d.LLM.BaseURL)
	v.SetDefault("llm_timeout", d.LLM.Timeout)
}

// FromViper materializes a Config from the flat viper key set
func FromViper(v *viper.Viper) Config {
	cfg := DefaultConfig()
	cfg.DataDir = v.GetString("data_dir")
	cfg.LockTimeout = v.GetDuration("lock_timeout")
	cfg.Collector.Interval = v.GetDuration("collector_interval")
	cfg.Collector.MaxCycles = v.GetInt("collector_max_cycles")
	cfg.Collector.SearchURL = v.GetString("search_url")
	cfg.Collector.UserAgent = v.GetString("user_agent")
	cfg.Collector.HTTPTimeout = v.GetDuration("http_timeout")
	cfg.Collector.MaxPageBytes = v.GetInt64("max_page_bytes")
	cfg.Collector.MaxPageChars = v.GetInt("max_page_chars")
	cfg.Collector.RatePerSecond = v.GetFloat64("rate_per_second")
	cfg.Collector.RateBurst = v.GetInt("rate_burst")
	cfg.Collector.CacheDir = v.GetString("cache_dir")
	cfg.Collector.CacheTTL = v.GetDuration("cache_ttl")
	cfg.Collector.HTTPProxy = v.GetString("http_proxy")
	cfg.Collector.HTTPSProxy = v.GetString("https_proxy")
	if qs := v.GetStringSlice("queries"); len(qs) > 0 {
		cfg.Collector.Queries = qs
	}
	cfg.Validator.WindowSize = v.GetInt("window_size")
	cfg.Validator.MaxQuestions = v.GetInt("max_questions")
	cfg.Scheduler.PollInterval = v.GetDuration("poll_interval")
	cfg.Scheduler.BatchThreshold = v.GetInt("batch_threshold")
	cfg.Scheduler.MaxAge = v.GetDuration("max_age")
	cfg.Audit.Timeout = v.GetDuration("audit_timeout")
	cfg.Audit.MaxWorkers = v.GetInt("audit_workers")
	cfg.LLM.Provider = v.GetString("llm_provider")
	cfg.LLM.Model = v.GetString("llm_model")
	cfg.LLM.BaseURL = v.GetString("llm_base_url")
	cfg.LLM.Timeout = v.GetInt("llm_timeout")
	return cfg
}
