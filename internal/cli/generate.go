package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/compiler/gen/sql"
	"github.com/syssam/sqlrepo/compiler/load"
	"github.com/syssam/sqlrepo/internal/config"
	"github.com/syssam/sqlrepo/internal/watch"
)

// modelExtensions are the file extensions reloaded in watch mode.
var modelExtensions = []string{".yaml", ".yml", ".json"}

func newGenerateCmd(o *rootOptions) *cobra.Command {
	var watchFlag bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the repository package",
		Long: `Generate loads the model files, synthesizes every repository and writes
the Go package to the target directory.

Examples:
  # Generate with ./.sqlrepo.yaml
  sqlrepo generate

  # Override the output
  sqlrepo generate --target internal/db --package example.com/shop/internal/db

  # Regenerate whenever a model file changes
  sqlrepo generate --watch
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, o, watchFlag)
		},
	}
	flags := cmd.Flags()
	flags.String("target", "", "output directory")
	flags.String("package", "", "import path of the generated package")
	flags.String("database", "", "default database of repositories that name none")
	flags.Int("workers", 0, "parallelism of synthesis and rendering (0 means GOMAXPROCS)")
	flags.StringSlice("include", nil, "only generate repositories matching these patterns")
	flags.BoolVarP(&watchFlag, "watch", "w", false, "regenerate when model files change")
	for _, key := range []string{"target", "package", "database", "workers", "include"} {
		_ = o.v.BindPFlag(key, flags.Lookup(key))
	}
	return cmd
}

func runGenerate(cmd *cobra.Command, o *rootOptions, watchMode bool) error {
	ctx := cmd.Context()
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return err
	}
	if err := generate(ctx, cfg, o.dir, logger); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}
	files, err := cfg.SchemaFiles(o.dir)
	if err != nil {
		return err
	}
	w, err := watch.New(files, modelExtensions, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()
	logger.InfoContext(ctx, "watching model files", "files", len(files))
	err = w.Run(ctx, func(changed []string) {
		logger.DebugContext(ctx, "model files changed", "files", changed)
		if err := generate(ctx, cfg, o.dir, logger); err != nil {
			logger.ErrorContext(ctx, "generation failed", "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// generate runs one load, synthesis and rendering pass.
func generate(ctx context.Context, cfg *config.Config, dir string, logger *slog.Logger) error {
	g, cache, err := buildGraph(ctx, cfg, dir, logger)
	if cache != nil {
		defer cache.Close()
	}
	if err != nil {
		return err
	}
	if err := sql.Generate(ctx, g); err != nil {
		return err
	}
	logger.InfoContext(ctx, "generated", "repositories", len(g.Repos), "target", g.Config.Target)
	return nil
}

// buildGraph loads the model files and synthesizes the graph.
func buildGraph(ctx context.Context, cfg *config.Config, dir string, logger *slog.Logger) (*gen.Graph, *gen.OtterCache, error) {
	files, err := cfg.SchemaFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	m, err := load.ReadFiles(files...)
	if err != nil {
		return nil, nil, err
	}
	opts, cache, err := cfg.Options(dir, logger)
	if err != nil {
		return nil, nil, err
	}
	gc, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, cache, err
	}
	g, err := gen.NewGraph(ctx, gc, m)
	if err != nil {
		return nil, cache, err
	}
	return g, cache, nil
}
