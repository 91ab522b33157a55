package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultURL is the hosted backend.
const DefaultURL = "https://mdninja.xyz"

// Config holds CLI configuration.
type Config struct {
	URL      string
	Session  string
	Dir      string
	Pattern  string
	Password string
}

// loadConfig reads ~/.config/mdninja/config.yaml (or $MDNINJA_CONFIG), then
// MDNINJA_* env vars, then flags, each overriding the previous.
func loadConfig(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault("url", DefaultURL)
	v.SetDefault("session", "")
	v.SetDefault("dir", ".")
	v.SetDefault("pattern", "*.md")
	v.SetDefault("password", "")

	v.SetConfigType("yaml")
	if path := os.Getenv("MDNINJA_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "mdninja"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MDNINJA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for _, key := range []string{"url", "session", "dir", "pattern", "password"} {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
