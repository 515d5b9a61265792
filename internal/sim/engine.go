// Package sim implements a steppable 2D force-directed layout over a
// node/edge set: link attraction, many-body repulsion, centering and
// collision avoidance. The engine owns all position and velocity state for
// the lifetime of one simulation run; callers drive it by calling Step once
// per frame and reading positions back.
package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Layout constants. Distances are in layout units.
const (
	LinkDistance   = 120.0
	ChargeStrength = -300.0
	CollideRadius  = 50.0
)

const (
	alphaMin        = 0.001
	defaultVelDecay = 0.4
	initialRadius   = 10.0
	jiggleMagnitude = 1e-6
)

// initialAngle spreads initial placements in a phyllotaxis spiral.
var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Node is the runtime layout state for one graph vertex. Position and
// velocity are owned exclusively by the engine; Pinned holds the pointer
// position while a drag gesture fixes the node in place.
type Node struct {
	ID     string
	Pos    r2.Vec
	Vel    r2.Vec
	Pinned *r2.Vec
}

// Link joins two nodes by arena index.
type Link struct {
	Source int
	Target int
}

// Engine is a force simulation over an arena of nodes. It is not safe for
// concurrent use; the owning session serializes all access.
type Engine struct {
	nodes  []Node
	links  []Link
	degree []int
	center r2.Vec

	alpha          float64
	alphaTarget    float64
	alphaDecay     float64
	velocityDecay  float64
	chargeStrength float64
	collideEnabled bool
}

// NewEngine builds a simulation over the given node IDs and links, centered
// on the given viewport center. Nodes start on a phyllotaxis spiral around
// the center so the first ticks spread them apart deterministically.
func NewEngine(ids []string, links []Link, center r2.Vec) *Engine {
	e := &Engine{
		nodes:          make([]Node, len(ids)),
		links:          links,
		degree:         make([]int, len(ids)),
		center:         center,
		alpha:          1,
		alphaDecay:     1 - math.Pow(alphaMin, 1.0/300),
		velocityDecay:  defaultVelDecay,
		chargeStrength: ChargeStrength,
		collideEnabled: true,
	}

	for i, id := range ids {
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		e.nodes[i] = Node{
			ID:  id,
			Pos: r2.Vec{X: center.X + radius*math.Cos(angle), Y: center.Y + radius*math.Sin(angle)},
		}
	}
	for _, l := range links {
		e.degree[l.Source]++
		e.degree[l.Target]++
	}
	return e
}

// Len returns the number of nodes in the arena.
func (e *Engine) Len() int { return len(e.nodes) }

// Node returns a copy of the node at the given arena index.
func (e *Engine) Node(i int) Node { return e.nodes[i] }

// Position returns the current position of the node at the given index.
func (e *Engine) Position(i int) r2.Vec { return e.nodes[i].Pos }

// Index returns the arena index for a node ID, or -1 if absent.
func (e *Engine) Index(id string) int {
	for i := range e.nodes {
		if e.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Pin fixes a node to the given position until Unpin. Pinned nodes ignore
// accumulated forces and track the pin exactly.
func (e *Engine) Pin(i int, p r2.Vec) {
	pinned := p
	e.nodes[i].Pinned = &pinned
	e.nodes[i].Pos = p
	e.nodes[i].Vel = r2.Vec{}
}

// Unpin releases a pinned node back to the simulation.
func (e *Engine) Unpin(i int) {
	e.nodes[i].Pinned = nil
}

// SetCenter moves the centering force's target point.
func (e *Engine) SetCenter(c r2.Vec) { e.center = c }

// SetCollision enables or disables the collision force.
func (e *Engine) SetCollision(enabled bool) { e.collideEnabled = enabled }

// CollisionEnabled reports whether the collision force is active.
func (e *Engine) CollisionEnabled() bool { return e.collideEnabled }

// SetChargeStrength overrides the many-body strength (0 suspends repulsion).
func (e *Engine) SetChargeStrength(s float64) { e.chargeStrength = s }

// Charge returns the current many-body strength.
func (e *Engine) Charge() float64 { return e.chargeStrength }

// SetAlphaTarget sets the alpha floor the simulation decays toward. A
// positive target keeps the simulation hot (used while dragging).
func (e *Engine) SetAlphaTarget(t float64) { e.alphaTarget = t }

// AlphaTarget returns the current alpha floor.
func (e *Engine) AlphaTarget() float64 { return e.alphaTarget }

// Alpha returns the current simulation temperature.
func (e *Engine) Alpha() float64 { return e.alpha }

// Settled reports whether the simulation has cooled below its working
// threshold and Step has become a no-op.
func (e *Engine) Settled() bool {
	return e.alpha < alphaMin && e.alphaTarget < alphaMin
}

// Step advances the simulation by one tick: decay alpha, apply all active
// forces to velocities, then integrate velocities into positions. Pinned
// nodes snap to their pin. Returns false when the simulation is settled
// and nothing moved.
func (e *Engine) Step() bool {
	if e.Settled() {
		return false
	}

	e.alpha += (e.alphaTarget - e.alpha) * e.alphaDecay

	e.applyLinks()
	e.applyCharge()
	e.applyCenter()
	if e.collideEnabled {
		e.applyCollide()
	}

	for i := range e.nodes {
		n := &e.nodes[i]
		if n.Pinned != nil {
			n.Pos = *n.Pinned
			n.Vel = r2.Vec{}
			continue
		}
		n.Vel = r2.Scale(1-e.velocityDecay, n.Vel)
		n.Pos = r2.Add(n.Pos, n.Vel)
	}
	return true
}
