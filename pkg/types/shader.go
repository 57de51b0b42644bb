// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"strings"
)

// BuiltinTargetPrefix marks render targets provided by the engine. Targets with
// this prefix are never declared in a post document.
const BuiltinTargetPrefix = "minecraft:"

// MainTarget is the input and output of a pass that does not name one.
const MainTarget = BuiltinTargetPrefix + "main"

// Uniform is a named, fixed-size float vector declared by a shader program.
// Len(Values) always equals Count.
type Uniform struct {
	Name   string
	Type   string
	Count  int
	Values []float32
}

// UniformOverride replaces the value of a declared uniform for a single pass.
type UniformOverride struct {
	Name   string
	Values []float32
}

// Pass is one stage of a post-processing pipeline, reading Input and writing Output.
type Pass struct {
	Name             string
	Input            string
	Output           string
	UniformOverrides []UniformOverride
}

// Definition is a fully resolved shader definition. All defaults are filled in
// and all cross references have been checked.
type Definition struct {
	// Name is the namespaced definition name, e.g. "mod:blur".
	Name string

	// Basename is the part of Name after the colon; it names every output file.
	Basename string

	// SourceFrag and SourceVert name the fragment and vertex source files
	// relative to the input directory.
	SourceFrag string
	SourceVert string

	Samplers []string

	// Uniforms starts with ProjMat, InSize and OutSize, followed by the
	// declared uniforms in document order.
	Uniforms []Uniform

	Passes []Pass

	// Targets lists the non-builtin targets referenced by Passes, in
	// first-seen order, without duplicates.
	Targets []string
}

// Uniform returns the uniform with the given name.
func (d *Definition) Uniform(name string) (Uniform, bool) {
	for _, u := range d.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return Uniform{}, false
}

// PostDocument is the post-processing pipeline document: the intermediate
// targets and the ordered list of passes.
type PostDocument struct {
	Targets []string   `json:"targets"`
	Passes  []PostPass `json:"passes"`
}

// PostPass is a pass entry of a PostDocument.
type PostPass struct {
	Name      string        `json:"name"`
	InTarget  string        `json:"intarget"`
	OutTarget string        `json:"outtarget"`
	Uniforms  []PostUniform `json:"uniforms"`
}

// PostUniform is a per-pass uniform override in a PostDocument.
type PostUniform struct {
	Name   string `json:"name"`
	Values Floats `json:"values"`
}

// ProgramDocument describes a single shader program.
type ProgramDocument struct {
	Blend      Blend            `json:"blend"`
	Vertex     string           `json:"vertex"`
	Fragment   string           `json:"fragment"`
	Attributes []string         `json:"attributes"`
	Samplers   []ProgramSampler `json:"samplers"`
	Uniforms   []ProgramUniform `json:"uniforms"`
}

// Blend is the blend state of a ProgramDocument.
type Blend struct {
	Func   string `json:"func"`
	SrcRGB string `json:"srcrgb"`
	DstRGB string `json:"dstrgb"`
}

// ProgramSampler names a sampler of a ProgramDocument.
type ProgramSampler struct {
	Name string `json:"name"`
}

// ProgramUniform is a uniform declaration of a ProgramDocument.
type ProgramUniform struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Values Floats `json:"values"`
}

// Floats is a list of uniform values. It encodes whole numbers with a trailing
// ".0" so that 1 is written as 1.0.
type Floats []float32

// MarshalJSON implements json.Marshaler.
func (f Floats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+4*len(f))
	buf = append(buf, '[')
	for i, v := range f {
		if i > 0 {
			buf = append(buf, ',')
		}
		s := strconv.FormatFloat(float64(v), 'g', -1, 32)
		buf = append(buf, s...)
		if !strings.ContainsAny(s, ".eEN") {
			buf = append(buf, ".0"...)
		}
	}
	return append(buf, ']'), nil
}
