// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the postshader CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/postshader/internal/compile"
	"github.com/pdiddy/postshader/internal/logging"
	"github.com/pdiddy/postshader/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE once flags and config are resolved.
var logger = zap.NewNop()

// rootCmd compiles a directory of shader definitions.
var rootCmd = &cobra.Command{
	Use:   "postshader [input-directory]",
	Short: "Compile shader definitions into post-processing pipeline documents",
	Long: `postshader reads every .json shader definition in the input directory
(default: the current directory) and writes, per definition, a post document
listing render targets and passes, and a program document declaring the
shader's samplers and uniforms. Referenced fragment and vertex sources are
copied next to the program document.

Output goes to dist/post and dist/program. The output directory is removed
at the start of every run.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetBool("verbose"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runCompile,
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg := compileConfig(args)
	c := compile.NewCompiler(afero.NewOsFs(), cfg, logger)

	result, err := c.CompileDir(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if cfg.FailOnError && result.HasFailures() {
		return fmt.Errorf("%d definition(s) failed to compile", result.Failed)
	}
	return nil
}

// compileConfig resolves the compile settings from the positional input
// directory and the flag, environment and config file values.
func compileConfig(args []string) types.CompileConfig {
	cfg := types.CompileConfig{
		OutputDir:   viper.GetString("output_dir"),
		PostDir:     viper.GetString("post_dir"),
		ProgramDir:  viper.GetString("program_dir"),
		FailOnError: viper.GetBool("fail_on_error"),
	}
	if len(args) > 0 {
		cfg.InputDir = args[0]
	}
	return cfg.WithDefaults()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./postshader.yaml or ~/.config/postshader/postshader.yaml)")
	flags.String("output-dir", types.DefaultOutputDir, "output directory, removed at the start of every run")
	flags.String("post-dir", types.DefaultPostDir, "subdirectory of the output directory for post documents")
	flags.String("program-dir", types.DefaultProgramDir, "subdirectory of the output directory for program documents")
	flags.Bool("fail-on-error", false, "exit with an error when any definition is rejected")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	for key, flag := range map[string]string{
		"output_dir":    "output-dir",
		"post_dir":      "post-dir",
		"program_dir":   "program-dir",
		"fail_on_error": "fail-on-error",
		"verbose":       "verbose",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("postshader")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "postshader"))
		}
	}

	viper.SetEnvPrefix("POSTSHADER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, compile.ErrNotDirectory) {
			fmt.Println("Input is not a directory")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
