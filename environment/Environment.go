// Package environment outlines the interfaces that the physics
// simulation used by the tower-stacking experiments must implement
package environment

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Block is a rigid body owned by a Physics simulation. Positions are
// reported in screen coordinates: x grows to the right and y grows
// downwards, so a block resting on the floor of a board of height H has
// y < H and a block that fell off the board has y > H.
type Block interface {
	Position() r2.Vec
}

// Physics implements a rigid-body simulation that blocks can be dropped
// into. Implementations need not be safe for concurrent use.
type Physics interface {
	// PlaceBlock spawns a new block centred at (x, y)
	PlaceBlock(x, y float64) Block

	// Step advances the simulation by dt seconds
	Step(dt float64)

	// Remove destroys a block previously returned by PlaceBlock
	Remove(Block)
}

// Renderer is a Physics simulation which can draw its current state
// to an image file
type Renderer interface {
	Physics
	Render(filename string) error
}
