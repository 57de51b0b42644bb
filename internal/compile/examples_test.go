// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/postshader/pkg/types"
)

// copyDir copies the regular files of src into a fresh temporary directory.
func copyDir(t *testing.T, src string) string {
	t.Helper()
	dst := t.TempDir()
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644))
	}
	return dst
}

func TestCompileDir_Examples(t *testing.T) {
	in := copyDir(t, filepath.Join("..", "..", "examples"))
	out := filepath.Join(t.TempDir(), "dist")
	c := NewCompiler(afero.NewOsFs(), types.CompileConfig{InputDir: in, OutputDir: out}, nil)

	var log bytes.Buffer
	result, err := c.CompileDir(&log)
	require.NoError(t, err)
	require.False(t, result.HasFailures(), log.String())
	assert.Equal(t, []string{"blur", "outline"}, result.Shaders)

	var post types.PostDocument
	data, err := os.ReadFile(filepath.Join(out, "post", "outline.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &post))
	assert.Equal(t, []string{"example:edges"}, post.Targets)
	require.Len(t, post.Passes, 2)
	assert.Equal(t, "example:outline", post.Passes[0].Name)
	assert.Equal(t, []types.PostUniform{{Name: "Width", Values: []float32{3}}}, post.Passes[1].Uniforms)

	var program types.ProgramDocument
	data, err = os.ReadFile(filepath.Join(out, "program", "outline.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &program))
	assert.Equal(t, "outline_frag", program.Fragment)
	assert.Equal(t, "sobel", program.Vertex)
	require.Len(t, program.Uniforms, 5)
	assert.Equal(t, types.ProgramUniform{Name: "Color", Type: "float", Count: 4, Values: []float32{1, 0.5, 0, 1}}, program.Uniforms[3])

	for _, name := range []string{"blur.fsh", "blur.vsh", "outline.fsh", "outline.vsh"} {
		assert.FileExists(t, filepath.Join(out, "program", name))
	}
}
