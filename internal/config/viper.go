package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultTimeoutSeconds = 600
	maxTimeoutSeconds     = 24 * 60 * 60
)

// NewViper returns a viper instance configured for BLACKTASK_* environment
// variables and an optional config file.
//
// Search order when configFile is empty:
//   - $HOME/.blacktask/config.(yaml|yml|json|toml|...)
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("BLACKTASK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("timeout", defaultTimeoutSeconds)

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v, nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(home, ".blacktask"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}

	return v, nil
}

// ResolveTimeout reads the "timeout" key in seconds. Zero disables the
// timeout; negative or unparsable values fall back to the default.
func ResolveTimeout(v *viper.Viper) time.Duration {
	if v == nil {
		return defaultTimeoutSeconds * time.Second
	}
	raw := strings.TrimSpace(v.GetString("timeout"))
	if raw == "" {
		return defaultTimeoutSeconds * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d < 0 {
			return defaultTimeoutSeconds * time.Second
		}
		return min(d, maxTimeoutSeconds*time.Second)
	}
	secs := v.GetInt("timeout")
	if secs < 0 || (secs == 0 && raw != "0") {
		return defaultTimeoutSeconds * time.Second
	}
	if secs > maxTimeoutSeconds {
		secs = maxTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// OptionsFromViper builds task overrides from config file and environment
// values. Keys that are not set produce nil fields.
func OptionsFromViper(v *viper.Viper) Options {
	var opts Options
	if v == nil {
		return opts
	}
	if v.IsSet("check") {
		opts.CheckOnly = Bool(v.GetBool("check"))
	}
	if v.IsSet("black-config") {
		opts.ConfigFile = String(v.GetString("black-config"))
	}
	if v.IsSet("source-directories") {
		opts.SourceDirectories = nonEmpty(v.GetStringSlice("source-directories"))
	}
	if v.IsSet("additional-args") {
		opts.AdditionalArgs = v.GetStringSlice("additional-args")
	}
	return opts
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, val := range values {
		if val = strings.TrimSpace(val); val != "" {
			out = append(out, val)
		}
	}
	return out
}
