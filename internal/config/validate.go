package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"

	"github.com/syssam/sqlrepo/compiler/gen"
)

var (
	// ErrNoSchema indicates that no model file was configured or found.
	ErrNoSchema = errors.New("no schema files")

	// ErrEmptyTarget indicates a missing output directory.
	ErrEmptyTarget = errors.New("empty target directory")

	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("invalid workers")

	// ErrInvalidCacheSize indicates a negative cache size.
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidInclude indicates an include pattern that does not compile.
	ErrInvalidInclude = errors.New("invalid include pattern")

	// ErrInvalidScalar indicates a scalar alias to an unknown kind.
	ErrInvalidScalar = errors.New("invalid scalar alias")
)

// Validate checks that the configuration is valid and complete. All
// problems are reported together.
func Validate(cfg *Config) error {
	var errs []error
	if len(cfg.Schema) == 0 {
		errs = append(errs, ErrNoSchema)
	}
	if cfg.Target == "" {
		errs = append(errs, ErrEmptyTarget)
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Workers))
	}
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidCacheSize, cfg.CacheSize))
	}
	for _, p := range cfg.Include {
		if _, err := glob.Compile(p, '.'); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %v", ErrInvalidInclude, p, err))
		}
	}
	for _, a := range cfg.Scalars {
		if a.Class == "" {
			errs = append(errs, fmt.Errorf("%w: missing class", ErrInvalidScalar))
			continue
		}
		s, err := gen.ParseScalar(a.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w %s: %v", ErrInvalidScalar, a.Class, err))
			continue
		}
		if !s.Storable() {
			errs = append(errs, fmt.Errorf("%w %s: kind %s is not storable", ErrInvalidScalar, a.Class, a.Kind))
		}
	}
	return errors.Join(errs...)
}
