// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import "github.com/pdiddy/postshader/pkg/types"

// programBlend is the blend state written to every program document.
var programBlend = types.Blend{
	Func:   "add",
	SrcRGB: "srcalpha",
	DstRGB: "1-srcalpha",
}

// programAttributes are the vertex attributes of every program document.
var programAttributes = []string{"Position"}

// BuildPost derives the post-processing pipeline document of def: its
// intermediate targets and one entry per pass with that pass's overrides.
func BuildPost(def *types.Definition) types.PostDocument {
	doc := types.PostDocument{
		Targets: append([]string{}, def.Targets...),
		Passes:  make([]types.PostPass, 0, len(def.Passes)),
	}
	for _, p := range def.Passes {
		uniforms := make([]types.PostUniform, 0, len(p.UniformOverrides))
		for _, o := range p.UniformOverrides {
			uniforms = append(uniforms, types.PostUniform{Name: o.Name, Values: o.Values})
		}
		doc.Passes = append(doc.Passes, types.PostPass{
			Name:      p.Name,
			InTarget:  p.Input,
			OutTarget: p.Output,
			Uniforms:  uniforms,
		})
	}
	return doc
}

// BuildProgram derives the shader program document of def. Its uniforms
// include the implicit ProjMat, InSize and OutSize declarations.
func BuildProgram(def *types.Definition) types.ProgramDocument {
	doc := types.ProgramDocument{
		Blend:      programBlend,
		Vertex:     def.SourceVert,
		Fragment:   def.SourceFrag,
		Attributes: append([]string{}, programAttributes...),
		Samplers:   make([]types.ProgramSampler, 0, len(def.Samplers)),
		Uniforms:   make([]types.ProgramUniform, 0, len(def.Uniforms)),
	}
	for _, s := range def.Samplers {
		doc.Samplers = append(doc.Samplers, types.ProgramSampler{Name: s})
	}
	for _, u := range def.Uniforms {
		doc.Uniforms = append(doc.Uniforms, types.ProgramUniform{
			Name:   u.Name,
			Type:   u.Type,
			Count:  u.Count,
			Values: u.Values,
		})
	}
	return doc
}
