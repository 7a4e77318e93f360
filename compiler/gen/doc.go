// Package gen synthesizes SQL repositories from a type model.
//
// The input is a load.Model: entity classes and repository interfaces
// with annotations. For each repository the package derives a table
// mapping of the entity, classifies every declared method, and
// synthesizes its SQL text, its bound parameters and the plan used to
// rebuild results from rows.
//
// # Architecture
//
// The pipeline follows this flow:
//
//	Declarations (YAML/JSON)
//	        ↓
//	   load.Model (classes, repositories, annotations)
//	        ↓
//	   Validate + Flatten (TableMapping per entity)
//	        ↓
//	   Graph (Repo and QueryMethod per repository method)
//	        ↓
//	   gen/sql renderer or Snapshot
//
// # Method Classification
//
// Methods are classified in priority order:
//
//   - custom: a non-empty Query or a Statement annotation
//   - save: a Save annotation, or a "save" prefix
//   - delete: a Delete annotation, or a "delete" prefix
//   - derived: everything else
//
// Standalone repositories (no entity) may only declare custom methods.
//
// Derived single-result queries are capped with "LIMIT 2" so that a
// second matching row is reported at runtime instead of being dropped.
// A First annotation caps them with "LIMIT 1".
//
// # Error Handling
//
// The package uses structured error types:
//
//   - ValidationError: an entity field that cannot be mapped
//   - MappingError: a method parameter or placeholder that cannot be bound
//   - SchemaError: a repository shape violation
//   - ConfigError: an invalid option
//   - GenerationError: a rendering failure
//
// Validation and build errors of all repositories are joined:
//
//	graph, err := gen.NewGraph(ctx, config, model)
//	if err != nil {
//	    if gen.IsMappingError(err) {
//	        // Handle a method that could not be mapped
//	    }
//	    return err
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	config, err := gen.NewConfig(
//	    gen.WithDatabase("shop.ShopDB"),
//	    gen.WithPackage("github.com/org/project/db"),
//	    gen.WithTarget("./db"),
//	    gen.WithInclude("shop.*"),
//	)
//
// Table mappings can be memoized across repositories:
//
//	cache, _ := gen.NewMappingCache(1024)
//	defer cache.Close()
//	config, err := gen.NewConfig(gen.WithMappingCache(cache))
package gen
