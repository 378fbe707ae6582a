// Package config loads bookplot settings.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults, which reproduce the classic analysis output
//  2. A TOML file, by default ~/.config/bookplot/config.toml
//  3. BOOKPLOT_* environment variables, e.g. BOOKPLOT_PLOT_SIDE=600
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[plot]
//	side = 600
//	divisions = 40
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	bperrors "github.com/matzehuels/bookplot/pkg/errors"
	"github.com/matzehuels/bookplot/pkg/pipeline"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "BOOKPLOT_"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the complete settings tree.
type Config struct {
	Plot   PlotConfig   `toml:"plot" envPrefix:"PLOT_"`
	Fit    FitConfig    `toml:"fit" envPrefix:"FIT_"`
	Cache  CacheConfig  `toml:"cache" envPrefix:"CACHE_"`
	Server ServerConfig `toml:"server" envPrefix:"SERVER_"`
}

// PlotConfig controls the rendered plots.
type PlotConfig struct {
	Side      float64  `toml:"side" env:"SIDE" validate:"gt=0"`
	Margin    float64  `toml:"margin" env:"MARGIN" validate:"gte=0"`
	Ticks     int      `toml:"ticks" env:"TICKS" validate:"gte=1,lte=100"`
	Divisions int      `toml:"divisions" env:"DIVISIONS" validate:"gte=1,lte=1000"`
	Formats   []string `toml:"formats" env:"FORMATS" validate:"dive,oneof=svg png pdf json csv"`
}

// FitConfig controls the estimator.
type FitConfig struct {
	MaxIterations    int     `toml:"max_iterations" env:"MAX_ITERATIONS" validate:"gte=0"`
	Tolerance        float64 `toml:"tolerance" env:"TOLERANCE" validate:"gte=0"`
	AllowUnconverged bool    `toml:"allow_unconverged" env:"ALLOW_UNCONVERGED"`
}

// CacheConfig selects where fits and plots are cached.
type CacheConfig struct {
	Backend   string `toml:"backend" env:"BACKEND" validate:"oneof=file redis none"`
	Dir       string `toml:"dir" env:"DIR"`
	RedisAddr string `toml:"redis_addr" env:"REDIS_ADDR" validate:"required_if=Backend redis"`
	KeyPrefix string `toml:"key_prefix" env:"KEY_PREFIX"`
}

// ServerConfig configures bookplot serve.
type ServerConfig struct {
	Addr           string        `toml:"addr" env:"ADDR" validate:"required"`
	Store          string        `toml:"store" env:"STORE" validate:"oneof=file mongo"`
	StoreDir       string        `toml:"store_dir" env:"STORE_DIR"`
	MongoURI       string        `toml:"mongo_uri" env:"MONGO_URI" validate:"required_if=Store mongo"`
	MongoDatabase  string        `toml:"mongo_database" env:"MONGO_DATABASE" validate:"required_if=Store mongo"`
	RequestTimeout time.Duration `toml:"request_timeout" env:"REQUEST_TIMEOUT" validate:"gte=0"`
	MaxUploadBytes int64         `toml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Plot: PlotConfig{
			Side:      pipeline.DefaultSide,
			Margin:    pipeline.DefaultMargin,
			Ticks:     pipeline.DefaultTicks,
			Divisions: pipeline.DefaultDivisions,
			Formats:   append([]string(nil), pipeline.DefaultFormats...),
		},
		Fit: FitConfig{
			MaxIterations: pipeline.DefaultMaxIterations,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       defaultCacheDir(),
			KeyPrefix: "bookplot:v1:",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			Store:          StoreFile,
			StoreDir:       defaultStoreDir(),
			MongoDatabase:  "bookplot",
			RequestTimeout: 60 * time.Second,
			MaxUploadBytes: 64 << 20,
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".bookplot", "cache")
	}
	return filepath.Join(dir, "bookplot")
}

// defaultStoreDir follows XDG_DATA_HOME, falling back to ~/.local/share.
func defaultStoreDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "bookplot", "analyses")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bookplot", "analyses")
	}
	return filepath.Join(home, ".local", "share", "bookplot", "analyses")
}

// DefaultPath returns ~/.config/bookplot/config.toml (or the platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bookplot", "config.toml")
}

// Load reads the file at path over the defaults, applies the environment and
// validates the result. An empty path means [DefaultPath], which may be absent;
// an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := cfg.loadEnv(nil); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return bperrors.Wrap(bperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return bperrors.New(bperrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// loadEnv applies BOOKPLOT_* variables. A nil environment reads the process
// environment.
func (c *Config) loadEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return bperrors.Wrap(bperrors.ErrCodeInvalidConfig, err, "parse env")
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return bperrors.Wrap(bperrors.ErrCodeInvalidConfig, err, "validate")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return bperrors.New(bperrors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
}

// describe turns "Config.Plot.Side" with tag gt=0 into "plot.side must be gt 0".
func describe(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	field := strings.ToLower(ns)
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	}
}

// PipelineOptions converts the plot and fit sections.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxIterations:    c.Fit.MaxIterations,
		Tolerance:        c.Fit.Tolerance,
		AllowUnconverged: c.Fit.AllowUnconverged,
		Formats:          append([]string(nil), c.Plot.Formats...),
		Side:             c.Plot.Side,
		Margin:           c.Plot.Margin,
		Ticks:            c.Plot.Ticks,
		Divisions:        c.Plot.Divisions,
	}
}
