package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/zeusln/swapspec/internal/model"
)

const (
	DefaultFile     = "swapspec.yaml"
	DefaultTitle    = "ZEUS Swaps API"
	DefaultMetadata = "package.json"
	DefaultOutput   = "swagger-spec.json"
	DefaultAPIs     = "./lib/api/v2/routers/*"

	envPrefix = "SWAPSPEC_"
)

type Config struct {
	Title        string         `koanf:"title"`
	Version      string         `koanf:"version"`
	Metadata     string         `koanf:"metadata"`
	APIs         []string       `koanf:"apis"`
	FailOnErrors bool           `koanf:"fail-on-errors"`
	Output       string         `koanf:"output"`
	Servers      []model.Server `koanf:"servers"`
	Embed        EmbedConfig    `koanf:"embed"`
}

type EmbedConfig struct {
	Output    string `koanf:"output"`
	Package   string `koanf:"package"`
	Func      string `koanf:"func"`
	Templates string `koanf:"templates"`
}

func defaults() map[string]any {
	return map[string]any{
		"title":          DefaultTitle,
		"metadata":       DefaultMetadata,
		"apis":           []string{DefaultAPIs},
		"fail-on-errors": true,
		"output":         DefaultOutput,
		"embed.package":  "apispec",
	}
}

// BindFlags binds the generation flags to the root command.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: swapspec.yaml)")
	flags.String("title", "", "API title")
	flags.String("api-version", "", "API version (default: read from project metadata)")
	flags.StringP("metadata", "m", "", "Project metadata file carrying the version (default: package.json)")
	flags.StringSlice("apis", nil, "Glob patterns of annotated source files")
	flags.Bool("fail-on-errors", true, "Abort on malformed annotations or an invalid document")
	flags.StringP("output", "o", "", "Output file (default: swagger-spec.json)")
	flags.String("embed-output", "", "Also write a Go file embedding the document")
	flags.String("embed-package", "", "Package name of the embedded spec file")
	flags.String("embed-func", "", "Accessor name in the embedded spec file (default: Spec)")
	flags.String("embed-templates", "", "Directory overriding the embedded spec template")
	flags.BoolP("verbose", "v", false, "Verbose logging")
}

// Load merges defaults, the config file, SWAPSPEC_* environment variables and
// explicitly set flags, in that order of precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(cfg.Servers) == 0 {
		cfg.Servers = model.DefaultServers()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envValue maps SWAPSPEC_FAIL_ON_ERRORS to fail-on-errors and
// SWAPSPEC_EMBED__OUTPUT to embed.output. APIS is comma separated.
func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	key = strings.ReplaceAll(key, "_", "-")

	if key == "apis" {
		var globs []string
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				globs = append(globs, g)
			}
		}
		return key, globs
	}
	return key, value
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	stringFlags := []struct{ flag, key string }{
		{"title", "title"},
		{"api-version", "version"},
		{"metadata", "metadata"},
		{"output", "output"},
		{"embed-output", "embed.output"},
		{"embed-package", "embed.package"},
		{"embed-func", "embed.func"},
		{"embed-templates", "embed.templates"},
	}
	for _, f := range stringFlags {
		if v := getString(f.flag); v != "" {
			m[f.key] = v
		}
	}

	if v := getStringSlice("apis"); len(v) > 0 {
		m["apis"] = v
	}
	if flagChanged("fail-on-errors") {
		m["fail-on-errors"] = getBool("fail-on-errors")
	}

	return m
}

func (c *Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	if c.Version == "" && c.Metadata == "" {
		return fmt.Errorf("either version or a metadata file is required")
	}
	if len(c.APIs) == 0 {
		return fmt.Errorf("at least one apis glob is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output file is required")
	}
	for i, s := range c.Servers {
		if s.URL == "" {
			return fmt.Errorf("server %d: url is required", i)
		}
	}
	if c.Embed.Output != "" && c.Embed.Package == "" {
		return fmt.Errorf("embed package is required when embed output is set")
	}
	return nil
}

// SpecConfig returns the generation inputs for the resolved version.
func (c *Config) SpecConfig(version string) model.SpecConfig {
	return model.SpecConfig{
		Title:        c.Title,
		Version:      version,
		SourceGlobs:  append([]string(nil), c.APIs...),
		FailOnErrors: c.FailOnErrors,
	}
}
