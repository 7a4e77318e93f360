// Package config loads the settings of the sqlrepo command from
// .sqlrepo.yaml, SQLREPO_* environment variables and flags.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/syssam/sqlrepo/compiler/gen"
)

// FileName is the base name of the configuration file, searched in the
// working directory.
const FileName = ".sqlrepo"

// Config holds the settings of a generation run.
type Config struct {
	// Schema lists glob patterns of model files, relative to the
	// working directory.
	Schema []string `mapstructure:"schema" yaml:"schema"`
	// Package is the import path of the generated package.
	Package string `mapstructure:"package" yaml:"package"`
	// Target is the output directory.
	Target string `mapstructure:"target" yaml:"target"`
	// Database is the default database, as a qualified name.
	Database string `mapstructure:"database" yaml:"database"`
	// Header replaces the "Code generated" header.
	Header string `mapstructure:"header" yaml:"header"`
	// Workers bounds build and render parallelism. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Include restricts generation to matching repositories.
	Include []string `mapstructure:"include" yaml:"include"`
	// Scalars maps extra class names to scalar kinds.
	Scalars []ScalarAlias `mapstructure:"scalars" yaml:"scalars"`
	// CacheSize bounds the table mapping cache. Zero disables it.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// ScalarAlias stores values of Class as the scalar Kind, for example
// "java.time.Instant" as "timestamp".
type ScalarAlias struct {
	Class string `mapstructure:"class" yaml:"class"`
	Kind  string `mapstructure:"kind" yaml:"kind"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schema:    []string{"sqlrepo/*.yaml"},
		Target:    "db",
		CacheSize: 256,
	}
}

// SchemaFiles expands the schema patterns below dir. Files are sorted
// and listed once.
func (c *Config) SchemaFiles(dir string) ([]string, error) {
	var files []string
	for _, p := range c.Schema {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("config: schema pattern %q: %w", p, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no file matches %v", ErrNoSchema, c.Schema)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Options converts c into generator options. The target is resolved
// against dir. The returned cache, if any, must be closed by the
// caller.
func (c *Config) Options(dir string, logger *slog.Logger) ([]gen.Option, *gen.OtterCache, error) {
	target := c.Target
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	opts := []gen.Option{
		gen.WithTarget(target),
		gen.WithWorkers(c.Workers),
		gen.WithHeader(c.Header),
		gen.WithLogger(logger),
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.Database != "" {
		opts = append(opts, gen.WithDatabase(c.Database))
	}
	if len(c.Include) > 0 {
		opts = append(opts, gen.WithInclude(c.Include...))
	}
	for _, a := range c.Scalars {
		opts = append(opts, gen.WithScalarAlias(a.Class, a.Kind))
	}
	if c.CacheSize == 0 {
		return opts, nil, nil
	}
	cache, err := gen.NewMappingCache(c.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	return append(opts, gen.WithMappingCache(cache)), cache, nil
}
