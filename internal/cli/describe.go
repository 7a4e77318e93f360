package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlrepo/compiler/gen"
)

func newDescribeCmd(o *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the synthesized repositories",
		Long: `Describe synthesizes the repositories and prints a snapshot of every
database, repository, method, query and parameter binding.

Examples:
  sqlrepo describe
  sqlrepo describe --format yaml
  sqlrepo describe --format msgpack --output snapshot.msgpack
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, err := o.load(cmd)
			if err != nil {
				return err
			}
			g, cache, err := buildGraph(ctx, cfg, o.dir, logger)
			if cache != nil {
				defer cache.Close()
			}
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("describe: %w", err)
				}
				defer f.Close()
				w = f
			}
			return g.Snapshot().Encode(w, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", gen.FormatJSON, "output format: json, yaml or msgpack")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
