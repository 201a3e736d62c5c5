package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pthm/inflate"
)

// config mirrors the keys read by viper.
type config struct {
	Base    string        `mapstructure:"base"`
	Include []string      `mapstructure:"include"`
	Timeout time.Duration `mapstructure:"timeout"`
	Debug   bool          `mapstructure:"debug"`
	Marker  string        `mapstructure:"marker"`
	Cache   cacheConfig   `mapstructure:"cache"`
}

type cacheConfig struct {
	Dir       string        `mapstructure:"dir"`
	TTL       time.Duration `mapstructure:"ttl"`
	Key       string        `mapstructure:"key"`
	Sensitive bool          `mapstructure:"sensitive"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "inflate",
		Short: "Load component bundles into HTML pages",
		Long: `inflate loads component bundles into an HTML page, expands every
element carrying an inflate="Name" attribute into the named component and
writes the result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .inflate.yaml or ~/.config/inflate/config.yaml)")
	root.PersistentFlags().Bool("debug", false, "log includes, definitions and ready stages")
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(newRenderCmd(v), newParseCmd(), newVersionCmd())
	return root
}

func loadConfig(v *viper.Viper, cfgFile string) error {
	v.SetDefault("base", "")
	v.SetDefault("include", []string{})
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("marker", inflate.DefaultMarker)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.key", "")
	v.SetDefault("cache.sensitive", false)

	v.SetEnvPrefix("INFLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(".inflate.yaml"); err == nil {
		v.SetConfigFile(".inflate.yaml")
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "inflate"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file anywhere is fine; flags and env still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func readConfig(v *viper.Viper) (config, error) {
	var cfg config
	err := v.Unmarshal(&cfg)
	return cfg, err
}

// newLogger builds a development logger at debug level when debug is on,
// and a quiet production logger otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("inflate version %s\n", version)
		},
	}
}
