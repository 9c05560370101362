package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	PDFText PDFTextConfig `yaml:"pdftext" mapstructure:"pdftext"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the scan history database.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// PDFTextConfig configures PDF text extraction.
type PDFTextConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// FetchConfig configures remote document downloads.
type FetchConfig struct {
	Dir           string  `yaml:"dir" mapstructure:"dir"`
	Concurrency   int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Retries       int     `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("belegscan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BELEGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "belegscan.db")
	v.SetDefault("pdftext.provider", "native")
	v.SetDefault("pdftext.pdftotext_path", "pdftotext")
	v.SetDefault("fetch.dir", "./receipts")
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.rate_per_second", 4.0)
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given command mode relies on.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.PDFText.Provider {
	case "", "native", "pdftotext", "auto":
	default:
		problems = append(problems, "pdftext.provider must be one of native, pdftotext, auto")
	}
	if c.Store.Path != "" && c.Store.Driver != "sqlite" {
		problems = append(problems, "store.driver must be sqlite")
	}

	switch mode {
	case "scan", "runs":
	case "fetch":
		if c.Fetch.Concurrency < 1 || c.Fetch.Concurrency > 32 {
			problems = append(problems, "fetch.concurrency must be between 1 and 32")
		}
		if c.Fetch.RatePerSecond <= 0 {
			problems = append(problems, "fetch.rate_per_second must be > 0")
		}
		if c.Fetch.Retries < 0 || c.Fetch.Retries > 10 {
			problems = append(problems, "fetch.retries must be between 0 and 10")
		}
		if c.Fetch.TimeoutSecs <= 0 {
			problems = append(problems, "fetch.timeout_secs must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
