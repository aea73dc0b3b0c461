package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ovex/pkg/core"
)

const envPrefix = "OVEX"

// Configuration keys. Each can be set in the config file, as OVEX_<KEY> in
// the environment, or through the flag of the same name with dashes.
const (
	keyBaseURL  = "base_url"
	keyAPIKeyID = "api_key_id"
	keySecret   = "secret_key"
	keyTimeout  = "timeout"
	keyLogLevel = "log_level"

	defaultLogLevel = "info"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := core.DefaultConfig()
	v.SetDefault(keyBaseURL, defaults.BaseURL)
	v.SetDefault(keyTimeout, defaults.Timeout)
	v.SetDefault(keyLogLevel, defaultLogLevel)
	return v
}

// bindFlags maps persistent flags onto configuration keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{keyBaseURL, keyAPIKeyID, keyTimeout, keyLogLevel} {
		if err := v.BindPFlag(key, flags.Lookup(strings.ReplaceAll(key, "_", "-"))); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return nil
}

// loadConfig reads the optional config file and builds a validated client
// configuration. The secret key is only read from the file or environment.
func loadConfig(v *viper.Viper, file string) (*core.Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	config := core.DefaultConfig().
		WithBaseURL(v.GetString(keyBaseURL)).
		WithTimeout(v.GetDuration(keyTimeout)).
		WithLogLevel(strings.ToLower(v.GetString(keyLogLevel)))

	keyID, secret := v.GetString(keyAPIKeyID), v.GetString(keySecret)
	if keyID != "" || secret != "" {
		config.WithCredentials(core.NewCredentials(keyID, secret))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
