// Package shaders provides embedded GLSL ES shader sources.
package shaders

import _ "embed"

// MorphVertexShader is the morph-target vertex shader body. It has no
// #version line; the count and stride defines are prepended at compile time.
//
//go:embed morph.vert
var MorphVertexShader string

// MorphFragmentShader is the fragment shader for the head.
//
//go:embed morph.frag
var MorphFragmentShader string
