package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds the runtime settings shared by the CLI and the server.
// Precedence: flags > environment (BKSPARSE_*) > config file > defaults.
type Config struct {
	Port           string
	OutputDir      string
	LogLevel       string
	MaxUploadBytes int64
}

// Build assembles the configuration from an optional config file, the
// environment and bound command-line flags.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("port", "3000")
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_bytes", int64(16<<20))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BKSPARSE")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return &Config{
		Port:           v.GetString("port"),
		OutputDir:      v.GetString("output_dir"),
		LogLevel:       v.GetString("log_level"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
	}, nil
}
