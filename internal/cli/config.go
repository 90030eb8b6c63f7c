package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/specialistvlad/missiongraph/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by the CLI, e.g.
// MISSIONGRAPH_ASSETS or MISSIONGRAPH_LOG_LEVEL.
const EnvPrefix = "MISSIONGRAPH"

// ConfigName is the base name of the optional configuration file.
const ConfigName = "missiongraph"

// fileConfig is the shape of missiongraph.yaml and of the merged flags.
type fileConfig struct {
	Assets        string        `mapstructure:"assets"`
	Pattern       string        `mapstructure:"pattern"`
	RootKind      string        `mapstructure:"root_kind"`
	NativeOnly    bool          `mapstructure:"native_only"`
	Hide          []string      `mapstructure:"hide"`
	MaxDepth      int           `mapstructure:"max_depth"`
	CacheSize     int           `mapstructure:"cache_size"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	StatusPort    int           `mapstructure:"status_port"`
	LogFormat     string        `mapstructure:"log_format"`
	LogLevel      string        `mapstructure:"log_level"`
}

// addConfigFlags registers the flags shared by every command.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Path to a configuration file (default ./missiongraph.yaml).")
	f.StringP("assets", "a", "", "Directory holding kind, record and mission files.")
	f.String("pattern", "", "Glob of asset files below the assets directory (default **/*.hcl).")
	f.String("root-kind", app.DefaultRootKind, "Kind every palette entry descends from.")
	f.Bool("native-only", false, "Ignore kinds declared by asset files.")
	f.StringSlice("hide", nil, "Kinds to hide from the palette.")
	f.Int("max-depth", 0, "Nesting limit for record pins (0 uses the default).")
	f.Int("cache-size", 0, "Number of record layouts to cache (0 uses the default).")
	f.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	f.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.Bool("no-color", false, "Disable colored output.")
}

// loadConfig merges, from lowest to highest precedence, defaults, the
// configuration file, MISSIONGRAPH_* environment variables and flags.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	v := viper.New()
	v.SetDefault("root_kind", app.DefaultRootKind)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "warn")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Flags are bound under the file keys so that an unset flag falls back
	// to the file and the environment.
	bindings := map[string]string{
		"assets":         "assets",
		"pattern":        "pattern",
		"root_kind":      "root-kind",
		"native_only":    "native-only",
		"hide":           "hide",
		"max_depth":      "max-depth",
		"cache_size":     "cache-size",
		"watch_debounce": "debounce",
		"status_port":    "status-port",
		"log_format":     "log-format",
		"log_level":      "log-level",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return app.NewConfig(app.Config{
		AssetsPath:    fc.Assets,
		Pattern:       fc.Pattern,
		RootKind:      fc.RootKind,
		NativeOnly:    fc.NativeOnly,
		ForcedHidden:  fc.Hide,
		MaxDepth:      fc.MaxDepth,
		CacheSize:     fc.CacheSize,
		WatchDebounce: fc.WatchDebounce,
		StatusPort:    fc.StatusPort,
		LogFormat:     strings.ToLower(fc.LogFormat),
		LogLevel:      strings.ToLower(fc.LogLevel),
	})
}
