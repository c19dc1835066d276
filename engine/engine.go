// Package engine builds and advances the text field scene independently of
// any window: the per-scene Context, the scalar and vector engines, the
// software point renderer and the run loop that feeds telemetry.
package engine

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/pluribus/telemetry"
)

// Kind selects one of the two engines.
type Kind string

const (
	Scalar Kind = "scalar" // per-particle relaxation on the CPU
	Vector Kind = "vector" // per-vertex displacement shader
)

// ParseKind parses an -engine flag value. Empty means Scalar.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Scalar, Vector:
		return k, nil
	case "":
		return Scalar, nil
	default:
		return "", fmt.Errorf("unknown engine %q (want scalar or vector)", s)
	}
}

// Engine advances and draws one scene. Rebuild is called whenever the
// Context is replaced; Step and Draw once per frame, in that order.
type Engine interface {
	Kind() Kind
	Rebuild(ctx *Context)
	Step(ctx *Context)
	Draw(ctx *Context)
	Stats() telemetry.FrameStats
	Unload()
}
