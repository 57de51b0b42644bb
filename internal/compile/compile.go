// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile turns shader definition documents into post and program
// documents and copies the referenced shader sources next to them.
package compile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pdiddy/postshader/internal/shaderdef"
	"github.com/pdiddy/postshader/pkg/types"
)

const (
	definitionExt = ".json"
	fragmentExt   = ".fsh"
	vertexExt     = ".vsh"
)

var (
	// ErrNotDirectory is returned when the input path is not a directory.
	ErrNotDirectory = errors.New("input is not a directory")

	// ErrUnsafeOutputDir is returned when wiping the output directory would
	// remove the input directory.
	ErrUnsafeOutputDir = errors.New("output directory contains the input directory")
)

// BatchResult holds the outcome of compiling a directory.
type BatchResult struct {
	Compiled int
	Failed   int

	// Shaders lists the basenames of compiled definitions in compile order.
	Shaders []string
}

// Total returns the number of definition documents processed.
func (r BatchResult) Total() int {
	return r.Compiled + r.Failed
}

// HasFailures reports whether any document was rejected.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Compiler compiles definition documents from one input directory into one
// output tree.
type Compiler struct {
	fs  afero.Fs
	cfg types.CompileConfig
	log *zap.Logger
}

// NewCompiler creates a compiler working on fsys. Empty directories in cfg are
// replaced by their defaults.
func NewCompiler(fsys afero.Fs, cfg types.CompileConfig, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{fs: fsys, cfg: cfg.WithDefaults(), log: log}
}

// Config returns the resolved configuration of the compiler.
func (c *Compiler) Config() types.CompileConfig {
	return c.cfg
}

// PostDir returns the directory post documents are written to.
func (c *Compiler) PostDir() string {
	return filepath.Join(c.cfg.OutputDir, c.cfg.PostDir)
}

// ProgramDir returns the directory program documents and shader sources are
// written to.
func (c *Compiler) ProgramDir() string {
	return filepath.Join(c.cfg.OutputDir, c.cfg.ProgramDir)
}

// CompileDir compiles every definition document in the input directory. The
// output directory is removed first. Each document prints one status line to
// w; a rejected document is reported and skipped. Filesystem errors stop the
// run and are returned.
func (c *Compiler) CompileDir(w io.Writer) (BatchResult, error) {
	var result BatchResult

	if ok, err := afero.IsDir(c.fs, c.cfg.InputDir); err != nil || !ok {
		return result, ErrNotDirectory
	}
	if err := c.checkOutputDir(); err != nil {
		return result, err
	}
	if err := c.fs.RemoveAll(c.cfg.OutputDir); err != nil {
		return result, fmt.Errorf("removing output directory %s: %w", c.cfg.OutputDir, err)
	}

	entries, err := afero.ReadDir(c.fs, c.cfg.InputDir)
	if err != nil {
		return result, fmt.Errorf("reading input directory %s: %w", c.cfg.InputDir, err)
	}

	seen := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, definitionExt) {
			continue
		}

		content, err := afero.ReadFile(c.fs, filepath.Join(c.cfg.InputDir, name))
		if err != nil {
			return result, fmt.Errorf("reading %s: %w", name, err)
		}

		basename, err := c.CompileFile(name, content)
		var verr *shaderdef.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintf(w, "Failed to parse: %v\n", verr)
			result.Failed++
			continue
		case err != nil:
			return result, err
		}

		if prev, ok := seen[basename]; ok {
			c.log.Warn("definition overwrites earlier output",
				zap.String("shader", basename),
				zap.String("document", name),
				zap.String("previous", prev))
		}
		seen[basename] = name

		fmt.Fprintf(w, "Compiled shader %s\n", basename)
		result.Compiled++
		result.Shaders = append(result.Shaders, basename)
	}

	fmt.Fprintf(w, "\nBatch summary: %d compiled, %d failed (total: %d)\n",
		result.Compiled, result.Failed, result.Total())
	return result, nil
}

// CompileFile parses one definition document and writes its outputs. The
// document name is used in error messages only. It returns the basename of
// the compiled shader. A rejected document returns a
// *shaderdef.ValidationError and writes nothing.
func (c *Compiler) CompileFile(document string, content []byte) (string, error) {
	def, err := shaderdef.Parse(document, content)
	if err != nil {
		return "", err
	}
	if err := c.Write(def); err != nil {
		return "", err
	}
	return def.Basename, nil
}

// Write writes the post and program documents of def and copies its shader
// sources. Sources missing from the input directory are skipped.
func (c *Compiler) Write(def *types.Definition) error {
	postDir, programDir := c.PostDir(), c.ProgramDir()
	for _, dir := range []string{postDir, programDir} {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := c.writeJSON(filepath.Join(postDir, def.Basename+definitionExt), BuildPost(def)); err != nil {
		return err
	}
	if err := c.writeJSON(filepath.Join(programDir, def.Basename+definitionExt), BuildProgram(def)); err != nil {
		return err
	}
	if err := c.copySource(def.SourceFrag, filepath.Join(programDir, def.Basename+fragmentExt)); err != nil {
		return err
	}
	return c.copySource(def.SourceVert, filepath.Join(programDir, def.Basename+vertexExt))
}

func (c *Compiler) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := afero.WriteFile(c.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	c.log.Debug("wrote document", zap.String("path", path))
	return nil
}

// copySource copies the named source file of the input directory to dst,
// replacing dst. A missing source, or one that is not a regular file, is
// skipped without error.
func (c *Compiler) copySource(name, dst string) error {
	src := filepath.Join(c.cfg.InputDir, name)
	info, err := c.fs.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		c.log.Debug("shader source not found, skipping copy", zap.String("source", src))
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking source %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		c.log.Debug("shader source is not a regular file, skipping copy", zap.String("source", src))
		return nil
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening source %s: %w", src, err)
	}
	defer in.Close()

	out, err := c.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	c.log.Debug("copied shader source", zap.String("source", src), zap.String("path", dst))
	return nil
}

// checkOutputDir refuses an output directory that is, or contains, the input
// directory, since it is removed at the start of every run.
func (c *Compiler) checkOutputDir() error {
	in, err := filepath.Abs(c.cfg.InputDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", c.cfg.InputDir, err)
	}
	out, err := filepath.Abs(c.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", c.cfg.OutputDir, err)
	}
	rel, err := filepath.Rel(out, in)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %s", ErrUnsafeOutputDir, c.cfg.OutputDir)
	}
	return nil
}
