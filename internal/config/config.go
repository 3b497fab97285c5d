// Package config loads the bridge's runtime options with the precedence
// CLI flags > environment variables > TOML config file > struct defaults,
// using reflection over struct tags the way the rest of the ecosystem's
// config loaders do.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envPrefix namespaces environment-variable overrides.
const envPrefix = "SPADEBRIDGE_"

// Options mirrors the bridge's command-line surface (spec.md §6.1 plus
// the ambient additions in SPEC_FULL.md §6).
type Options struct {
	Config        string `toml:"-"`
	Unit          bool   `toml:"unit"`
	Socket        string `toml:"socket"`
	WaitForEnd    bool   `toml:"wait-for-end"`
	ReorderWindow int    `toml:"reorder-window" env:"REORDER_WINDOW"`
	MetricsAddr   string `toml:"metrics-addr" env:"METRICS_ADDR"`
	LogFormat     string `toml:"log-format" env:"LOG_FORMAT"`
	LogLevel      string `toml:"log-level" env:"LOG_LEVEL"`
}

// Load applies TOML-file and environment-variable overrides to opts,
// skipping any field whose corresponding flag was explicitly set on cmd.
// CLI flags always win; environment variables win over the config file;
// the file wins over whatever default opts already held.
func Load(opts *Options, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changedFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changedFlags[f.Name] = true
			}
		})
	}

	if opts.Config != "" {
		data, err := os.ReadFile(opts.Config)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}

		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse TOML config: %w", err)
		}

		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			fieldType := t.Field(i)

			flagName := fieldType.Tag.Get("toml")
			if flagName == "" || flagName == "-" {
				continue
			}
			if changedFlags[flagName] {
				continue
			}

			if value, ok := raw[flagName]; ok {
				setFieldValue(field, value)
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		flagName := fieldType.Tag.Get("toml")
		if flagName != "" && flagName != "-" && changedFlags[flagName] {
			continue
		}

		envKey := fieldType.Tag.Get("env")
		if envKey == "" {
			continue
		}
		if envValue, ok := os.LookupEnv(envPrefix + envKey); ok {
			setFieldValueFromString(field, envValue)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		}
	}
}

func setFieldValueFromString(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(n)
		}
	}
}
