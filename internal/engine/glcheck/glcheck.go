// Package glcheck runs groups of GL calls and reports the error flags they
// raised.
package glcheck

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// Error lists the GL error codes raised while running one labelled step.
type Error struct {
	Step  string
	Codes []uint32
}

func (e *Error) Error() string {
	names := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		names[i] = CodeName(c)
	}
	return fmt.Sprintf("%s: GL error %s", e.Step, strings.Join(names, ", "))
}

// CodeName returns the symbolic name of a glGetError code.
func CodeName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	}
	return fmt.Sprintf("0x%04x", code)
}

// maxDrain bounds the error flags collected after one step; some drivers
// keep returning the same flag.
const maxDrain = 16

// Run executes fn and collects every error flag left behind. Flags set
// before fn are reported too, so no error goes unnoticed between steps.
func Run(step string, fn func()) error {
	return run(step, fn, gl.GetError)
}

func run(step string, fn func(), next func() uint32) error {
	fn()
	return collect(step, next)
}

func collect(step string, next func() uint32) error {
	var codes []uint32
	for range maxDrain {
		code := next()
		if code == gl.NO_ERROR {
			break
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}
	return &Error{Step: step, Codes: codes}
}
