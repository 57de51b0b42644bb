// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shaderdef decodes simplified shader definition documents into fully
// resolved types.Definition records.
//
// Documents are strict JSON. Once validated with encoding/json they are decoded
// through a yaml.Node tree so that object keys keep their document order, which
// fixes the order of declared uniforms and per-pass overrides in the generated
// documents.
package shaderdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postshader/pkg/types"
)

const (
	defaultSourceFrag  = "blit"
	defaultSourceVert  = "sobel"
	defaultUniformType = "float"

	// passNamePlaceholder resolves to the definition name.
	passNamePlaceholder = "%"
)

// ImplicitUniforms returns the uniforms every program declares before its own:
// ProjMat (identity), InSize and OutSize.
func ImplicitUniforms() []types.Uniform {
	return []types.Uniform{
		{Name: "ProjMat", Type: "matrix4x4", Count: 16, Values: []float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}},
		{Name: "InSize", Type: "float", Count: 2, Values: []float32{1, 1}},
		{Name: "OutSize", Type: "float", Count: 2, Values: []float32{1, 1}},
	}
}

// Parse decodes and validates the definition document content. The document
// argument names the source file and only appears in error messages. Any
// rejection is returned as a *ValidationError.
func Parse(document string, content []byte) (*types.Definition, error) {
	p := &parser{document: document}
	return p.parse(content)
}

// Basename returns the part of a definition name after its colon. The name
// must contain exactly one colon and a non-empty id.
func Basename(name string) (string, bool) {
	ns, id, ok := strings.Cut(name, ":")
	if !ok || ns == "" || id == "" || strings.Contains(id, ":") {
		return "", false
	}
	return id, true
}

type parser struct {
	document string
}

func (p *parser) fail(err error, path, format string, args ...any) error {
	return &ValidationError{
		Document: p.document,
		Path:     path,
		Reason:   fmt.Sprintf(format, args...),
		Err:      err,
	}
}

func (p *parser) parse(content []byte) (*types.Definition, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	var raw json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, p.fail(ErrSyntax, "", "is not valid JSON: %v", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(unescapeSolidus(content), &root); err != nil {
		return nil, p.fail(ErrSyntax, "", "is not valid JSON: %v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, p.fail(ErrWrongType, "", "is not a JSON object")
	}
	top := deref(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, p.fail(ErrWrongType, "", "is not a JSON object")
	}

	def := &types.Definition{}
	var err error

	if def.Name, err = p.requiredString(top, "", "name"); err != nil {
		return nil, err
	}
	basename, ok := Basename(def.Name)
	if !ok {
		return nil, p.fail(ErrInvalidName, "name", "%q must have the form namespace:id", def.Name)
	}
	def.Basename = basename

	if def.SourceFrag, err = p.optionalString(top, "", "sourceFrag", defaultSourceFrag); err != nil {
		return nil, err
	}
	if def.SourceVert, err = p.optionalString(top, "", "sourceVert", defaultSourceVert); err != nil {
		return nil, err
	}
	if def.Samplers, err = p.samplers(top); err != nil {
		return nil, err
	}
	if def.Uniforms, err = p.uniforms(top); err != nil {
		return nil, err
	}
	if err := p.passes(top, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (p *parser) samplers(top *yaml.Node) ([]string, error) {
	seq, err := p.required(top, "", "samplers", yaml.SequenceNode, "must be a list")
	if err != nil {
		return nil, err
	}
	samplers := make([]string, 0, len(seq.Content))
	for i, n := range seq.Content {
		n = deref(n)
		if !isString(n) {
			return nil, p.fail(ErrWrongType, fmt.Sprintf("samplers[%d]", i), "must be a string")
		}
		samplers = append(samplers, n.Value)
	}
	return samplers, nil
}

// uniforms builds the implicit uniforms followed by the declared ones. A
// declaration is either a bare list of numbers or an object with a required
// "values" list and an optional "type". Other shapes are ignored.
func (p *parser) uniforms(top *yaml.Node) ([]types.Uniform, error) {
	m, err := p.required(top, "", "uniforms", yaml.MappingNode, "must be an object")
	if err != nil {
		return nil, err
	}
	uniforms := ImplicitUniforms()
	declared := func(name string) bool {
		return slices.ContainsFunc(uniforms, func(u types.Uniform) bool { return u.Name == name })
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		idx := i / 2
		path := fmt.Sprintf("uniforms[%d]", idx)
		name := m.Content[i].Value
		n := deref(m.Content[i+1])

		var u types.Uniform
		switch n.Kind {
		case yaml.MappingNode:
			valuesNode := lookup(n, "values")
			if isNull(valuesNode) {
				return nil, p.fail(ErrMissingField, path+" -> values", "does not exist")
			}
			values, ok := floats(valuesNode)
			if !ok {
				return nil, p.fail(ErrWrongType, path+" -> values", "must be a list of numbers")
			}
			typ, err := p.optionalString(n, path, "type", defaultUniformType)
			if err != nil {
				return nil, err
			}
			u = types.Uniform{Name: name, Type: typ, Count: len(values), Values: values}
		case yaml.SequenceNode:
			values, ok := floats(n)
			if !ok {
				return nil, p.fail(ErrWrongType, path, "must be a list of numbers")
			}
			u = types.Uniform{Name: name, Type: defaultUniformType, Count: len(values), Values: values}
		default:
			continue
		}

		if declared(name) {
			return nil, p.fail(ErrDuplicateUniform, path, "redeclares uniform %q", name)
		}
		uniforms = append(uniforms, u)
	}
	return uniforms, nil
}

// passes resolves every pass of the document into def.Passes and collects the
// non-builtin targets into def.Targets. Uniforms must already be resolved.
func (p *parser) passes(top *yaml.Node, def *types.Definition) error {
	seq, err := p.required(top, "", "passes", yaml.SequenceNode, "must be a list")
	if err != nil {
		return err
	}
	def.Passes = make([]types.Pass, 0, len(seq.Content))
	def.Targets = []string{}

	for i, n := range seq.Content {
		path := fmt.Sprintf("passes[%d]", i)
		n = deref(n)
		if n.Kind != yaml.MappingNode {
			return p.fail(ErrWrongType, path, "is not an object")
		}

		name, err := p.requiredString(n, path, "name")
		if err != nil {
			return err
		}
		if name == passNamePlaceholder {
			name = def.Name
		}
		input, err := p.optionalString(n, path, "input", types.MainTarget)
		if err != nil {
			return err
		}
		output, err := p.optionalString(n, path, "output", types.MainTarget)
		if err != nil {
			return err
		}
		for _, target := range []string{input, output} {
			if !strings.HasPrefix(target, types.BuiltinTargetPrefix) && !slices.Contains(def.Targets, target) {
				def.Targets = append(def.Targets, target)
			}
		}

		overrides, err := p.overrides(n, path, def)
		if err != nil {
			return err
		}
		def.Passes = append(def.Passes, types.Pass{
			Name:             name,
			Input:            input,
			Output:           output,
			UniformOverrides: overrides,
		})
	}
	return nil
}

func (p *parser) overrides(pass *yaml.Node, passPath string, def *types.Definition) ([]types.UniformOverride, error) {
	overrides := []types.UniformOverride{}
	m := lookup(pass, "uniformOverrides")
	if isNull(m) {
		return overrides, nil
	}
	if m.Kind != yaml.MappingNode {
		return nil, p.fail(ErrWrongType, passPath+" -> uniformOverrides", "must be an object")
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		path := fmt.Sprintf("%s -> uniformOverrides[%d]", passPath, i/2)
		name := m.Content[i].Value

		u, ok := def.Uniform(name)
		if !ok {
			return nil, p.fail(ErrUndefinedUniform, path, "references undefined uniform %q", name)
		}
		values, ok := floats(deref(m.Content[i+1]))
		if !ok {
			return nil, p.fail(ErrWrongType, path, "must be a list of numbers")
		}
		if len(values) != u.Count {
			return nil, p.fail(ErrCountMismatch, path, "references uniform %s with %d values, specifies %d",
				name, u.Count, len(values))
		}
		overrides = append(overrides, types.UniformOverride{Name: name, Values: values})
	}
	return overrides, nil
}

func (p *parser) required(m *yaml.Node, prefix, key string, kind yaml.Kind, wrongType string) (*yaml.Node, error) {
	n := lookup(m, key)
	if isNull(n) {
		return nil, p.fail(ErrMissingField, join(prefix, key), "does not exist")
	}
	if n.Kind != kind {
		return nil, p.fail(ErrWrongType, join(prefix, key), "%s", wrongType)
	}
	return n, nil
}

func (p *parser) requiredString(m *yaml.Node, prefix, key string) (string, error) {
	n := lookup(m, key)
	if isNull(n) {
		return "", p.fail(ErrMissingField, join(prefix, key), "does not exist")
	}
	if !isString(n) {
		return "", p.fail(ErrWrongType, join(prefix, key), "must be a string")
	}
	return n.Value, nil
}

// optionalString returns the string at key, or fallback when the key is
// absent or null.
func (p *parser) optionalString(m *yaml.Node, prefix, key, fallback string) (string, error) {
	n := lookup(m, key)
	if isNull(n) {
		return fallback, nil
	}
	if !isString(n) {
		return "", p.fail(ErrWrongType, join(prefix, key), "must be a string")
	}
	return n.Value, nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + " -> " + key
}
