package gen

import (
	"errors"
	"io"
	"log/slog"
	"runtime"

	"github.com/gobwas/glob"

	"github.com/syssam/sqlrepo/compiler/load"
)

// Config holds the settings of a synthesis and rendering run.
type Config struct {
	// Database is the default database of repositories that do not
	// name one.
	Database load.QualifiedName
	// Package is the import path of the generated package.
	Package string
	// Target is the output directory.
	Target string
	// Header is written at the top of each generated file.
	Header string
	// Workers bounds the number of repositories built and rendered
	// concurrently. Zero means GOMAXPROCS.
	Workers int
	// Include restricts the repositories built to those whose
	// qualified name matches one of the glob patterns.
	Include []string
	// Scalars maps class names to scalar kinds. Nil means
	// DefaultScalars.
	Scalars ScalarTable
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger

	cache   MappingCache
	include []glob.Glob
}

// Option configures synthesis and rendering.
type Option func(*Config) error

// WithDatabase sets the default database, as a qualified name.
func WithDatabase(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("Database", nil, "database cannot be empty")
		}
		c.Database = load.ParseQualifiedName(name)
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/db".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers bounds the parallelism of graph building and rendering.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithInclude restricts generation to repositories matching one of
// the patterns. Patterns use "." as separator, so "shop.*" matches
// "shop.ItemRepository" but not "shop.admin.UserRepository".
func WithInclude(patterns ...string) Option {
	return func(c *Config) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '.')
			if err != nil {
				return NewConfigError("Include", p, err.Error())
			}
			c.Include = append(c.Include, p)
			c.include = append(c.include, g)
		}
		return nil
	}
}

// WithMappingCache memoizes table mappings across repositories.
func WithMappingCache(mc MappingCache) Option {
	return func(c *Config) error {
		if mc == nil {
			return NewConfigError("MappingCache", nil, "cache cannot be nil")
		}
		c.cache = mc
		return nil
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// WithScalarAlias maps an additional class name to a scalar kind, for
// example "java.time.Instant" to "timestamp".
func WithScalarAlias(class, kind string) Option {
	return func(c *Config) error {
		s, err := ParseScalar(kind)
		if err != nil {
			return NewConfigError("Scalars", kind, err.Error())
		}
		if !s.Storable() {
			return NewConfigError("Scalars", kind, "kind is not storable")
		}
		if c.Scalars == nil {
			c.Scalars = DefaultScalars()
		}
		c.Scalars[load.ParseQualifiedName(class)] = s
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// OutputConfig groups the settings of the renderer.
type OutputConfig struct {
	Target  string
	Package string
	Header  string
}

// Output returns the output settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{Target: c.Target, Package: c.Package, Header: c.Header}
}

// Included reports whether the repository named n is selected by
// the include patterns. No patterns select everything.
func (c *Config) Included(n load.QualifiedName) bool {
	if len(c.include) == 0 {
		return true
	}
	s := n.String()
	for _, g := range c.include {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// ScalarKind classifies t with the configured scalar table.
func (c *Config) ScalarKind(t *load.Type) Scalar {
	return c.scalarTable().Kind(t)
}

// Log returns the configured logger, or one that discards.
func (c *Config) Log() *slog.Logger {
	return c.logger()
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c *Config) scalarTable() ScalarTable {
	if c.Scalars != nil {
		return c.Scalars
	}
	return defaultScalars
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discard
}

func (c *Config) cachedMapping(n load.QualifiedName) (*TableMapping, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(n)
}

func (c *Config) cacheMapping(t *TableMapping) {
	if c.cache != nil && !c.cache.Set(t.Klass.Name, t) {
		c.logger().Debug("mapping not cached", "class", t.Klass.Name.String())
	}
}

var (
	defaultScalars = DefaultScalars()
	discard        = slog.New(slog.NewTextHandler(io.Discard, nil))
)
