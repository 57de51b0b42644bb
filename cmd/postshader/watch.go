// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/postshader/internal/compile"
	"github.com/pdiddy/postshader/internal/watch"
	"github.com/pdiddy/postshader/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [input-directory]",
	Short: "Recompile shader definitions whenever the input directory changes",
	Long: `Watch compiles the input directory once, then recompiles all of it after
every change to a definition or shader source in that directory. Changes
inside the output directory are ignored. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after a change before recompiling")
	if err := viper.BindPFlag("debounce", watchCmd.Flags().Lookup("debounce")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := compile.NewCompiler(afero.NewOsFs(), compileConfig(args), logger)
	cfg := types.WatchConfig{
		CompileConfig: c.Config(),
		Debounce:      viper.GetDuration("debounce"),
	}
	out := cmd.OutOrStdout()

	build := func() error {
		_, err := c.CompileDir(out)
		return err
	}
	if err := build(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(cfg.InputDir, cfg.Debounce, build, logger, cfg.OutputDir)
	fmt.Fprintf(out, "Watching %s for changes (Ctrl-C to stop)\n", cfg.InputDir)
	return w.Run(ctx)
}
