// Package config decodes the aspirations.yaml file, ASPIRATIONS_* environment
// variables and command flags into one typed configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/advisor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/classifier"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/dataset"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/secrets"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/training"
)

const (
	App       = "aspirations"
	EnvPrefix = "ASPIRATIONS"

	DefaultModelLocation = "model_pipeline.json"
	DefaultAddress       = ":8080"
	DefaultTheme         = "Vibrant"
)

type Config struct {
	Model    ModelConfig       `mapstructure:"model"`
	Training training.Config   `mapstructure:"training"`
	Server   ServerConfig      `mapstructure:"server"`
	S3       artifact.S3Config `mapstructure:"s3"`
	Registry RegistryConfig    `mapstructure:"registry"`
	Advisor  AdvisorConfig     `mapstructure:"advisor"`
}

type ModelConfig struct {
	Location string `mapstructure:"location"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"` // negative disables limiting
	RateWindow   time.Duration `mapstructure:"rate_window"`
	DefaultTheme string        `mapstructure:"default_theme"`
	ChartTopN    int           `mapstructure:"chart_top_n"`
}

// RegistryConfig points at the optional training run database.
type RegistryConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn_file"`
}

type AdvisorConfig struct {
	advisor.Config `mapstructure:",squash"`
	APIKey         string `mapstructure:"api_key"`
	APIKeyFile     string `mapstructure:"api_key_file"`
}

// SetDefaults registers every known key so environment variables can
// override keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	forest := classifier.DefaultForestParams()
	train := training.DefaultConfig()

	v.SetDefault("model.location", DefaultModelLocation)

	v.SetDefault("training.data", train.DataPath)
	v.SetDefault("training.target_column", train.TargetColumn)
	v.SetDefault("training.test_size", train.TestSize)
	v.SetDefault("training.seed", train.Seed)
	v.SetDefault("training.strict", false)
	v.SetDefault("training.skip_steps", []string{})
	v.SetDefault("training.forest.trees", forest.Trees)
	v.SetDefault("training.forest.seed", forest.Seed)
	v.SetDefault("training.forest.max_features", forest.MaxFeatures)
	v.SetDefault("training.forest.class_weight", forest.ClassWeight)
	v.SetDefault("training.forest.min_samples_split", forest.MinSamplesSplit)
	v.SetDefault("training.forest.min_samples_leaf", forest.MinSamplesLeaf)
	v.SetDefault("training.forest.max_depth", forest.MaxDepth)
	v.SetDefault("training.forest.bootstrap", forest.Bootstrap)
	v.SetDefault("training.forest.workers", 0)

	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.rate_window", time.Minute)
	v.SetDefault("server.default_theme", DefaultTheme)
	v.SetDefault("server.chart_top_n", 10)

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", false)

	v.SetDefault("registry.dsn", "")
	v.SetDefault("registry.dsn_file", "")

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "gemini-2.5-flash")
	v.SetDefault("advisor.tone", "Friendly")
	v.SetDefault("advisor.max_retries", 2)
	v.SetDefault("advisor.retry_delay", 2*time.Second)
	v.SetDefault("advisor.timeout", 20*time.Second)
	v.SetDefault("advisor.max_log_length", 200)
	v.SetDefault("advisor.api_key", "")
	v.SetDefault("advisor.api_key_file", "")
}

// BindEnv wires ASPIRATIONS_* variables, e.g. ASPIRATIONS_MODEL_LOCATION.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ReadFile reads the config file. Without an explicit file it looks for
// aspirations.yaml in the working directory and tolerates its absence.
func ReadFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName(App)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config, fills what viper could not default and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Model.Location = strings.TrimSpace(c.Model.Location)
	if c.Model.Location == "" {
		c.Model.Location = DefaultModelLocation
	}
	if len(c.Training.Labels) == 0 {
		c.Training.Labels = append([]string(nil), dataset.DefaultLabels...)
	}
	if c.Training.TargetColumn == "" {
		c.Training.TargetColumn = dataset.DefaultTargetColumn
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.DefaultTheme == "" {
		c.Server.DefaultTheme = DefaultTheme
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("training.test_size must be between 0 and 1, got %v", c.Training.TestSize))
	}
	if err := dataset.CheckLabels(c.Training.Labels); err != nil {
		errs = append(errs, fmt.Errorf("training.labels: %w", err))
	}
	if _, err := dataset.Filters(c.Training.Strict, c.Training.SkipSteps); err != nil {
		errs = append(errs, fmt.Errorf("training.skip_steps: %w", err))
	}
	if c.Training.Forest.Trees < 1 {
		errs = append(errs, fmt.Errorf("training.forest.trees must be positive, got %d", c.Training.Forest.Trees))
	}
	if _, err := classifier.ResolveMaxFeatures(c.Training.Forest.MaxFeatures, 1); err != nil {
		errs = append(errs, fmt.Errorf("training.forest.max_features: %w", err))
	}
	switch c.Training.Forest.ClassWeight {
	case classifier.ClassWeightBalanced, classifier.ClassWeightNone:
	default:
		errs = append(errs, fmt.Errorf("training.forest.class_weight must be %q or %q", classifier.ClassWeightBalanced, classifier.ClassWeightNone))
	}
	if c.Server.ChartTopN < 0 {
		errs = append(errs, errors.New("server.chart_top_n must not be negative"))
	}
	if artifact.IsS3(c.Model.Location) {
		if _, _, err := artifact.ParseS3(c.Model.Location); err != nil {
			errs = append(errs, fmt.Errorf("model.location: %w", err))
		}
	}
	return errors.Join(errs...)
}

// UsesS3 reports whether the model lives in a bucket.
func (c *Config) UsesS3() bool {
	return artifact.IsS3(c.Model.Location)
}

// RegistryDSN resolves the database DSN. An empty string disables the registry.
func (c *Config) RegistryDSN() (string, error) {
	if strings.TrimSpace(c.Registry.DSN) == "" && strings.TrimSpace(c.Registry.DSNFile) == "" {
		return "", nil
	}
	return secrets.Load(secrets.Source{
		Name:  "registry dsn",
		File:  c.Registry.DSNFile,
		Value: c.Registry.DSN,
	})
}

// AdvisorAPIKey resolves the Gemini key from the file, the inline value or GEMINI_API_KEY.
func (c *Config) AdvisorAPIKey() (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  c.Advisor.APIKeyFile,
		Value: c.Advisor.APIKey,
		Env:   "GEMINI_API_KEY",
	})
}
