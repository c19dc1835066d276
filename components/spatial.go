package components

// Position is a particle's current, displaced position in surface pixels.
type Position struct {
	X, Y float32
}

// Anchor is the rest position a particle relaxes toward. Set once at spawn.
type Anchor struct {
	X, Y float32
}
