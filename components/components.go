// Package components defines ECS components for the scalar particle field.
package components

// Kind identifies what a particle belongs to. Fixed at creation.
type Kind uint8

const (
	KindBackground Kind = iota // Grid scatter outside the letter silhouettes
	KindText                   // Ring-textured glyph fill
)

// String returns the kind name used in logs and telemetry.
func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Appearance holds per-particle draw state. Alpha is recomputed every frame.
type Appearance struct {
	Size      float32
	BaseAlpha float32
	Alpha     float32
}

// Dynamics holds the immutable per-kind motion parameters of a particle.
type Dynamics struct {
	Kind     Kind
	Friction float32 // Fraction of the offset from Anchor removed each frame, in (0, 1]
	Push     float32 // Wave push strength; zero means waves pass through
	Jitter   float32 // Idle jitter amplitude
}
