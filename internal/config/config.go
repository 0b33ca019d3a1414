// Package config loads the module list and generation settings.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Module is one source/template/output triple. Relative paths are resolved
// against Config.Root.
type Module struct {
	Source   string `mapstructure:"source" validate:"required"`
	Template string `mapstructure:"template" validate:"required"`
	Output   string `mapstructure:"output" validate:"required"`
}

// VocabularyEntry adds a label for a named type reference. Entries are a
// list rather than a map because viper lower-cases map keys.
type VocabularyEntry struct {
	Name  string `mapstructure:"name" validate:"required"`
	Label string `mapstructure:"label" validate:"required"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Root         string            `validate:"required"`
	Modules      []Module          `validate:"required,min=1,dive"`
	Vocabulary   []VocabularyEntry `validate:"dive"`
	Dedup        string            `validate:"oneof=by-name literal"`
	UnknownTypes string            `validate:"oneof=error placeholder"`
	Check        bool
	ModelDir     string
	ModelFormat  string `validate:"oneof=yaml yml json"`
	LogLevel     string `validate:"oneof=debug info warn error"`
}

// clients are the contract clients documented by default.
var clients = []string{"ColonyClient", "ColonyNetworkClient", "TokenClient", "AuthorityClient"}

// DefaultModules returns the built-in module list, relative to the client
// package directory.
func DefaultModules() []Module {
	modules := make([]Module, 0, len(clients))
	for _, name := range clients {
		modules = append(modules, Module{
			Source:   filepath.Join("src", name, "index.js"),
			Template: filepath.Join("docs", "_API_"+name+".template.md"),
			Output:   filepath.Join("..", "..", "docs", "_API_"+name+".md"),
		})
	}
	return modules
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLIENTDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("root", ".")
	v.SetDefault("dedup", "by-name")
	v.SetDefault("unknown-types", "error")
	v.SetDefault("model-format", "yaml")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("clientdoc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Root:         v.GetString("root"),
		Dedup:        strings.ToLower(v.GetString("dedup")),
		UnknownTypes: strings.ToLower(v.GetString("unknown-types")),
		Check:        v.GetBool("check"),
		ModelDir:     v.GetString("model-dir"),
		ModelFormat:  strings.ToLower(v.GetString("model-format")),
		LogLevel:     strings.ToLower(v.GetString("log-level")),
	}

	if v.IsSet("modules") {
		if err := v.UnmarshalKey("modules", &cfg.Modules); err != nil {
			return Config{}, fmt.Errorf("decode modules: %w", err)
		}
	} else {
		cfg.Modules = DefaultModules()
	}

	if v.IsSet("vocabulary") {
		if err := v.UnmarshalKey("vocabulary", &cfg.Vocabulary); err != nil {
			return Config{}, fmt.Errorf("decode vocabulary: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolvedModules returns the module list with relative paths joined to Root.
func (c Config) ResolvedModules() []Module {
	out := make([]Module, 0, len(c.Modules))
	for _, m := range c.Modules {
		out = append(out, Module{
			Source:   c.resolve(m.Source),
			Template: c.resolve(m.Template),
			Output:   c.resolve(m.Output),
		})
	}
	return out
}

// VocabularyMap returns the extra vocabulary as a lookup table.
func (c Config) VocabularyMap() map[string]string {
	if len(c.Vocabulary) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.Vocabulary))
	for _, e := range c.Vocabulary {
		out[e.Name] = e.Label
	}
	return out
}

func (c Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}
