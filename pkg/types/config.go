package types

import "time"

// CompileConfig holds the settings of a compile run. It is resolved once at
// startup and passed to the compiler.
type CompileConfig struct {
	// InputDir is the directory scanned for definition documents (default ".").
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is the top-level output directory (default "dist"). It is
	// removed and recreated at the start of every run.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PostDir is the subdirectory of OutputDir for post documents (default "post").
	PostDir string `json:"post_dir" yaml:"post_dir"`

	// ProgramDir is the subdirectory of OutputDir for program documents and
	// copied shader sources (default "program").
	ProgramDir string `json:"program_dir" yaml:"program_dir"`

	// FailOnError makes a run with rejected documents exit with an error.
	FailOnError bool `json:"fail_on_error" yaml:"fail_on_error"`
}

const (
	DefaultInputDir   = "."
	DefaultOutputDir  = "dist"
	DefaultPostDir    = "post"
	DefaultProgramDir = "program"
)

// WithDefaults returns a copy of c with empty directories set to their defaults.
func (c CompileConfig) WithDefaults() CompileConfig {
	if c.InputDir == "" {
		c.InputDir = DefaultInputDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.PostDir == "" {
		c.PostDir = DefaultPostDir
	}
	if c.ProgramDir == "" {
		c.ProgramDir = DefaultProgramDir
	}
	return c
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	CompileConfig `yaml:",inline"`

	// Debounce is the quiet period after a filesystem event before the
	// directory is recompiled (default 200ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}
