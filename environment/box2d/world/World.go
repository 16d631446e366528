// Package world provides a Box2D simulation of square blocks falling
// onto a flat platform, for use as the physics of the tower-stacking
// task.
package world

import (
	"fmt"
	"image/color"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/environment/tower"
)

const (
	// Pixels per Box2D metre
	Scale float64 = 100.0

	VelocityIterations int = 8
	PositionIterations int = 3

	BlockMass     float64 = 1.0
	BlockFriction float64 = 1.0
	FloorFriction float64 = 1.0
)

var (
	BlockColour = color.RGBA{R: 244, G: 193, B: 193, A: 255}
	FloorColour = color.RGBA{R: 61, G: 53, B: 122, A: 255}
	SkyColour   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// block is a dynamic body in the world
type block struct {
	body *box2d.B2Body
	w    *World
}

// Position returns the centre of the block in screen coordinates
func (b *block) Position() r2.Vec {
	return b.w.worldToPixel(b.body.GetPosition())
}

// World is a Box2D world containing a static floor spanning the bottom
// edge of the board. Blocks are spawned with fixed mass, friction and
// zero restitution. World implements environment.Renderer.
type World struct {
	world box2d.B2World
	floor *box2d.B2Body

	blocks    []*block
	blockSize float64 // pixels
	width     float64 // pixels
	height    float64 // pixels
}

// New creates a new, empty World with the board geometry and gravity
// of c
func New(c tower.Config) (*World, error) {
	if c.BoardWidth <= 0 || c.BoardHeight <= 0 || c.BlockSize <= 0 {
		return nil, fmt.Errorf("new: illegal board geometry %vx%v with "+
			"block size %v", c.BoardWidth, c.BoardHeight, c.BlockSize)
	}

	w := &World{
		blockSize: c.BlockSize,
		width:     c.BoardWidth,
		height:    c.BoardHeight,
	}

	// Screen y grows downwards, Box2D y grows upwards
	w.world = box2d.MakeB2World(box2d.MakeB2Vec2(0.0, -c.Gravity/Scale))

	floorDef := box2d.NewB2BodyDef()
	floorDef.Type = 0 // Static body
	w.floor = w.world.CreateBody(floorDef)

	floorShape := box2d.NewB2EdgeShape()
	floorShape.Set(box2d.MakeB2Vec2(0.0, 0.0),
		box2d.MakeB2Vec2(c.BoardWidth/Scale, 0.0))

	floorFix := box2d.MakeB2FixtureDef()
	floorFix.Shape = floorShape
	floorFix.Friction = FloorFriction
	floorFix.Restitution = 0.0
	w.floor.CreateFixtureFromDef(&floorFix)

	return w, nil
}

// PlaceBlock spawns a block centred at screen coordinates (x, y)
func (w *World) PlaceBlock(x, y float64) environment.Block {
	def := box2d.MakeB2BodyDef()
	def.Type = 2 // Dynamic body
	def.Position = w.pixelToWorld(r2.Vec{X: x, Y: y})
	def.Angle = 0.0
	body := w.world.CreateBody(&def)

	half := w.blockSize / Scale / 2
	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(half, half)

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Density = BlockMass / (4 * half * half)
	fix.Friction = BlockFriction
	fix.Restitution = 0.0
	body.CreateFixtureFromDef(&fix)

	b := &block{body, w}
	w.blocks = append(w.blocks, b)
	return b
}

// Step advances the simulation by dt seconds
func (w *World) Step(dt float64) {
	w.world.Step(dt, VelocityIterations, PositionIterations)
}

// Remove destroys a block spawned by the World. Blocks from other
// simulations and blocks which were already removed are ignored.
func (w *World) Remove(b environment.Block) {
	bl, ok := b.(*block)
	if !ok || bl.w != w {
		return
	}

	for i := range w.blocks {
		if w.blocks[i] == bl {
			w.world.DestroyBody(bl.body)
			w.blocks = append(w.blocks[:i], w.blocks[i+1:]...)
			return
		}
	}
}

// Len returns the number of blocks in the world
func (w *World) Len() int {
	return len(w.blocks)
}

// Render draws the board and all blocks to a PNG image
func (w *World) Render(filename string) error {
	dc := gg.NewContext(int(w.width), int(w.height))
	dc.SetColor(SkyColour)
	dc.Clear()

	// Floor
	dc.SetColor(FloorColour)
	dc.SetLineWidth(5.0)
	dc.DrawLine(0, w.height, w.width, w.height)
	dc.Stroke()

	// Blocks
	for _, b := range w.blocks {
		fix := b.body.GetFixtureList()
		for fix != nil {
			shape, ok := fix.M_shape.(*box2d.B2PolygonShape)
			if !ok {
				fix = fix.M_next
				continue
			}

			dc.ClearPath()
			for i, vertex := range shape.M_vertices {
				if i >= shape.M_count {
					break
				}
				vertex = box2d.B2TransformVec2Mul(b.body.M_xf, vertex)
				p := w.worldToPixel(vertex)
				dc.LineTo(p.X, p.Y)
			}
			dc.ClosePath()

			dc.SetColor(BlockColour)
			dc.FillPreserve()
			dc.SetColor(FloorColour)
			dc.SetLineWidth(1.0)
			dc.Stroke()

			fix = fix.M_next
		}
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (w *World) worldToPixel(v box2d.B2Vec2) r2.Vec {
	return r2.Vec{X: Scale * v.X, Y: w.height - Scale*v.Y}
}

func (w *World) pixelToWorld(p r2.Vec) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(p.X/Scale, (w.height-p.Y)/Scale)
}
