// Package cli implements the sqlrepo command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/sqlrepo/internal/config"
)

// rootOptions holds the state shared by all subcommands.
type rootOptions struct {
	v          *viper.Viper
	configFile string
	dir        string
}

// NewRootCmd returns the sqlrepo command with its subcommands.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{v: viper.New()}
	cmd := &cobra.Command{
		Use:   "sqlrepo",
		Short: "Generate SQL repositories from declarative models",
		Long: `sqlrepo reads repository declarations and their entity classes, synthesizes
the SQL of every method and renders a Go package implementing them.

Settings are read from .sqlrepo.yaml in the working directory, from
SQLREPO_* environment variables and from flags, flags winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&o.configFile, "config", "", "config file (default is ./.sqlrepo.yaml)")
	cmd.PersistentFlags().StringVarP(&o.dir, "dir", "C", ".", "working directory")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = o.v.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newGenerateCmd(o), newDescribeCmd(o))
	return cmd
}

// Execute runs the command and returns the process exit code. This is
// called by main.main().
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "sqlrepo:", err)
		return 1
	}
	return 0
}

// load reads the configuration and builds the logger writing to the
// error stream of cmd.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
	}
	cfg, err := config.Load(o.v, o.dir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cmd.ErrOrStderr(), cfg.Verbose), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
