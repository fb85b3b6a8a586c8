package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/fetcher"
)

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Matching MatchingConfig `yaml:"matching" mapstructure:"matching"`
	Ranking  RankingConfig  `yaml:"ranking" mapstructure:"ranking"`
	Dispatch DispatchConfig `yaml:"dispatch" mapstructure:"dispatch"`
	Lexicon  LexiconConfig  `yaml:"lexicon" mapstructure:"lexicon"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the consumer and provider sheets and the columns
// projected from each. FileName may also be an http(s) or ftp URL.
type InputConfig struct {
	FileName         string   `yaml:"file_name" mapstructure:"file_name"`
	UserSheet        string   `yaml:"user_sheet" mapstructure:"user_sheet"`
	ServiceSheet     string   `yaml:"service_sheet" mapstructure:"service_sheet"`
	UserColumns      []string `yaml:"user_columns" mapstructure:"user_columns"`
	UserIDColumns    []string `yaml:"user_id_columns" mapstructure:"user_id_columns"`
	ServiceColumns   []string `yaml:"service_columns" mapstructure:"service_columns"`
	ServiceIDColumns []string `yaml:"service_id_columns" mapstructure:"service_id_columns"`
}

// OutputConfig configures the recommendation writer.
type OutputConfig struct {
	File   string `yaml:"file" mapstructure:"file"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ColumnPair is a consumer column compared directly against a provider column.
type ColumnPair struct {
	User    string `yaml:"user" mapstructure:"user"`
	Service string `yaml:"service" mapstructure:"service"`
}

// MatchingConfig holds the column roles and weights of the scoring engine.
type MatchingConfig struct {
	MatchingColumns             []ColumnPair `yaml:"matching_columns" mapstructure:"matching_columns"`
	UserAdditionalColumns       []string     `yaml:"user_additional_columns" mapstructure:"user_additional_columns"`
	ServiceAdditionalColumns    []string     `yaml:"service_additional_columns" mapstructure:"service_additional_columns"`
	ZeroWeight                  float64      `yaml:"zero_weight" mapstructure:"zero_weight"`
	OneWeight                   float64      `yaml:"one_weight" mapstructure:"one_weight"`
	TextMatchingThreshold       float64      `yaml:"text_matching_threshold" mapstructure:"text_matching_threshold"`
	TextMatchingWeight          float64      `yaml:"text_matching_weight" mapstructure:"text_matching_weight"`
	DelimitedWeight             float64      `yaml:"delimited_weight" mapstructure:"delimited_weight"`
	DelimitedTextMatchingWeight float64      `yaml:"delimited_text_matching_weight" mapstructure:"delimited_text_matching_weight"`
	SynonymWeight               float64      `yaml:"synonym_weight" mapstructure:"synonym_weight"`
	RegexDelimiter              string       `yaml:"regex_delimiter" mapstructure:"regex_delimiter"`
	StopwordsLanguage           string       `yaml:"stopwords_language" mapstructure:"stopwords_language"`
}

// RankingConfig holds the recommendation cutoffs.
type RankingConfig struct {
	MaxRecommendation int     `yaml:"max_recommendation" mapstructure:"max_recommendation"`
	ThresholdScore    float64 `yaml:"threshold_score" mapstructure:"threshold_score"`
}

// DispatchConfig configures the consumer worker pool.
type DispatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LexiconConfig selects the synonym dictionary backend.
type LexiconConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Path     string `yaml:"path" mapstructure:"path"`
	Stemming bool   `yaml:"stemming" mapstructure:"stemming"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Lexicon drivers.
const (
	LexiconEmbedded = "embedded"
	LexiconYAML     = "yaml"
	LexiconSQLite   = "sqlite"
)

// Load reads configuration from an optional .env file, the config file and
// the environment. An empty path searches the working directory for
// config.yaml or config.json.
func Load(path string) (*Config, error) {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("PARTNER_MATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.user_sheet", "users")
	v.SetDefault("input.service_sheet", "services")
	v.SetDefault("output.file", "recommendations.xlsx")
	v.SetDefault("output.format", "")
	v.SetDefault("matching.user_additional_columns", []string{})
	v.SetDefault("matching.service_additional_columns", []string{})
	v.SetDefault("matching.zero_weight", 0.0)
	v.SetDefault("matching.one_weight", 1.0)
	v.SetDefault("matching.text_matching_threshold", 80.0)
	v.SetDefault("matching.text_matching_weight", 0.8)
	v.SetDefault("matching.delimited_weight", 0.7)
	v.SetDefault("matching.delimited_text_matching_weight", 0.5)
	v.SetDefault("matching.synonym_weight", 0.4)
	v.SetDefault("matching.regex_delimiter", `[\s,;/&()\-]+`)
	v.SetDefault("matching.stopwords_language", "english")
	v.SetDefault("ranking.max_recommendation", 5)
	v.SetDefault("ranking.threshold_score", 0.3)
	v.SetDefault("dispatch.workers", 20)
	v.SetDefault("lexicon.driver", LexiconEmbedded)
	v.SetDefault("lexicon.path", "")
	v.SetDefault("lexicon.stemming", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless a path was given)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, apperr.Configuration(path, eris.Wrap(err, "config: read file"))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Configuration("", eris.Wrap(err, "config: unmarshal"))
	}

	return &cfg, nil
}

// Validate checks that the options required by the named command are present.
func (c *Config) Validate(command string) error {
	var errs []string

	switch command {
	case "recommend":
		if c.Input.FileName == "" {
			errs = append(errs, "input.file_name is required")
		} else if fetcher.IsRemote(c.Input.FileName) {
			// Downloaded at run time.
		} else if _, err := os.Stat(c.Input.FileName); err != nil {
			errs = append(errs, "input.file_name does not exist: "+c.Input.FileName)
		}
		if c.Input.UserSheet == "" {
			errs = append(errs, "input.user_sheet is required")
		}
		if c.Input.ServiceSheet == "" {
			errs = append(errs, "input.service_sheet is required")
		}
		if len(c.Input.UserColumns) == 0 {
			errs = append(errs, "input.user_columns is required")
		}
		if len(c.Input.UserIDColumns) == 0 {
			errs = append(errs, "input.user_id_columns is required")
		}
		if len(c.Input.ServiceColumns) == 0 {
			errs = append(errs, "input.service_columns is required")
		}
		if len(c.Input.ServiceIDColumns) == 0 {
			errs = append(errs, "input.service_id_columns is required")
		}
		if c.Output.File == "" {
			errs = append(errs, "output.file is required")
		}
		if len(c.Matching.MatchingColumns) == 0 {
			errs = append(errs, "matching.matching_columns must not be empty")
		}
		if c.Dispatch.Workers < 1 {
			errs = append(errs, "dispatch.workers must be >= 1")
		}
		errs = append(errs, c.validateLexicon()...)
	case "lexicon":
		errs = append(errs, c.validateLexicon()...)
	}

	if len(errs) > 0 {
		return apperr.Configurationf("", "config: validation failed for %s: %s", command, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateLexicon() []string {
	switch c.Lexicon.Driver {
	case LexiconEmbedded:
		return nil
	case LexiconYAML, LexiconSQLite:
		if c.Lexicon.Path == "" {
			return []string{"lexicon.path is required for driver " + c.Lexicon.Driver}
		}
		return nil
	default:
		return []string{"lexicon.driver must be embedded, yaml or sqlite (got " + c.Lexicon.Driver + ")"}
	}
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
