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
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	OpenAIP  OpenAIPConfig  `yaml:"openaip" mapstructure:"openaip"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Merge    MergeConfig    `yaml:"merge" mapstructure:"merge"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig holds the pipeline data directories.
type DataConfig struct {
	RawDir          string `yaml:"raw_dir" mapstructure:"raw_dir"`
	IntermediateDir string `yaml:"intermediate_dir" mapstructure:"intermediate_dir"`
	ExportDir       string `yaml:"export_dir" mapstructure:"export_dir"`
}

// OpenAIPConfig configures the OpenAIP bucket source.
type OpenAIPConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Bucket  string `yaml:"bucket" mapstructure:"bucket"`
	Suffix  string `yaml:"suffix" mapstructure:"suffix"`
}

// OverpassConfig configures the Overpass API source.
type OverpassConfig struct {
	URL          string `yaml:"url" mapstructure:"url"`
	LatDivisions int    `yaml:"lat_divisions" mapstructure:"lat_divisions"`
	LonDivisions int    `yaml:"lon_divisions" mapstructure:"lon_divisions"`
}

// FetchConfig configures HTTP download behavior.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// MergeConfig holds the proximity radii used during deduplication and annotation.
type MergeConfig struct {
	DuplicateRadiusM float64 `yaml:"duplicate_radius_m" mapstructure:"duplicate_radius_m"`
	HospitalRadiusM  float64 `yaml:"hospital_radius_m" mapstructure:"hospital_radius_m"`
	OffshoreRadiusM  float64 `yaml:"offshore_radius_m" mapstructure:"offshore_radius_m"`
}

// StoreConfig configures the run catalog backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HELIPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.intermediate_dir", "data/intermediate")
	v.SetDefault("data.export_dir", "data/export")
	v.SetDefault("openaip.base_url", "https://storage.googleapis.com")
	v.SetDefault("openaip.bucket", "29f98e10-a489-4c82-ae5e-489dbcd4912f")
	v.SetDefault("openaip.suffix", "_apt.json")
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.lat_divisions", 18)
	v.SetDefault("overpass.lon_divisions", 36)
	v.SetDefault("fetch.user_agent", "helipad-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("merge.duplicate_radius_m", 50)
	v.SetDefault("merge.hospital_radius_m", 500)
	v.SetDefault("merge.offshore_radius_m", 250)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/runs.db")
	// Empty default so the env override is visible to Unmarshal.
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the configuration for the given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "retrieve":
		if c.Overpass.URL == "" {
			problems = append(problems, "overpass.url is required")
		}
		if c.OpenAIP.Bucket == "" {
			problems = append(problems, "openaip.bucket is required")
		}
		if c.Overpass.LatDivisions < 1 || c.Overpass.LonDivisions < 1 {
			problems = append(problems, "overpass divisions must be >= 1")
		}
		if c.Data.RawDir == "" {
			problems = append(problems, "data.raw_dir is required")
		}
	case "merge":
		if c.Merge.DuplicateRadiusM <= 0 {
			problems = append(problems, "merge.duplicate_radius_m must be > 0")
		}
		if c.Merge.HospitalRadiusM <= 0 || c.Merge.OffshoreRadiusM <= 0 {
			problems = append(problems, "merge annotation radii must be > 0")
		}
		if c.Data.RawDir == "" || c.Data.IntermediateDir == "" {
			problems = append(problems, "data.raw_dir and data.intermediate_dir are required")
		}
	case "export":
		if c.Data.IntermediateDir == "" || c.Data.ExportDir == "" {
			problems = append(problems, "data.intermediate_dir and data.export_dir are required")
		}
	case "run":
		for _, m := range []string{"retrieve", "merge", "export"} {
			if err := c.Validate(m); err != nil {
				problems = append(problems, eris.Cause(err).Error())
			}
		}
		checkStore()
	case "runs":
		checkStore()
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
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
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
