package shader

import (
	"errors"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// Attribute and uniform names used by the head program.
const (
	AttrVertex   = "in_vertex"
	AttrNormal   = "in_normal"
	AttrTexcoord = "in_texcoord"

	UniformDiffuseTex    = "diffuseTex"
	UniformIsCurve       = "uIsCurve"
	UniformBaseInfluence = "morphTargetBaseInfluence"
	UniformInfluences    = "morphTargetInfluences"
	UniformMorphTexture  = "morphTargetsTexture"
	UniformMorphTexSize  = "morphTargetsTextureSize"
	UniformHasTargets    = "hasTargets"
	UniformModelViewProj = "modelViewProjectionMatrix"
)

// ErrNoVertexAttribute is returned when the program does not use in_vertex.
var ErrNoVertexAttribute = errors.New("program has no active in_vertex attribute")

// Locations holds resolved attribute and uniform locations. A value of -1
// means the program does not use it and the matching state is not set.
type Locations struct {
	Vertex, Normal, Texcoord int32

	DiffuseTex    int32
	IsCurve       int32
	BaseInfluence int32
	Influences    int32
	MorphTexture  int32
	MorphTexSize  int32
	HasTargets    int32
	MVP           int32
}

// Resolve looks up every location in program.
func Resolve(program uint32) (Locations, error) {
	return resolve(
		func(name string) int32 { return gl.GetAttribLocation(program, gl.Str(name+"\x00")) },
		func(name string) int32 { return gl.GetUniformLocation(program, gl.Str(name+"\x00")) },
	)
}

func resolve(attrib, uniform func(string) int32) (Locations, error) {
	loc := Locations{
		Vertex:   attrib(AttrVertex),
		Normal:   attrib(AttrNormal),
		Texcoord: attrib(AttrTexcoord),

		DiffuseTex:    uniform(UniformDiffuseTex),
		IsCurve:       uniform(UniformIsCurve),
		BaseInfluence: uniform(UniformBaseInfluence),
		Influences:    uniform(UniformInfluences),
		MorphTexture:  uniform(UniformMorphTexture),
		MorphTexSize:  uniform(UniformMorphTexSize),
		HasTargets:    uniform(UniformHasTargets),
		MVP:           uniform(UniformModelViewProj),
	}
	if loc.Vertex < 0 {
		return loc, ErrNoVertexAttribute
	}
	return loc, nil
}

// Attribute returns the location bound to a glTF attribute semantic, or -1.
func (l Locations) Attribute(semantic string) int32 {
	switch semantic {
	case "POSITION":
		return l.Vertex
	case "NORMAL":
		return l.Normal
	case "TEXCOORD_0":
		return l.Texcoord
	}
	return -1
}
