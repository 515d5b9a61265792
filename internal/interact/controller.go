// Package interact implements the pointer-driven interaction state machine
// over a running layout simulation: drag-to-connect with magnetic snapping,
// a two-step connect mode, click-to-navigate, and edge deletion prompts.
// The controller never mutates the store itself; it emits Actions for the
// owning session to execute, and the session reloads the graph afterwards.
package interact

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ensmesh/ensmesh/internal/graph"
	"github.com/ensmesh/ensmesh/internal/sim"
)

// Magnetic drag thresholds, in layout units.
const (
	MagnetRadius   = 100.0
	SnapRadius     = 50.0
	MagnetStrength = 0.6
)

// dragAlphaTarget keeps the simulation hot while a node is dragged.
const dragAlphaTarget = 0.3

// State is the controller's interaction state.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateConnectMode
)

// ActionType identifies a mutation or navigation request emitted by the
// controller.
type ActionType int

const (
	ActionCreateEdge ActionType = iota
	ActionDeleteEdge
	ActionNavigate
	ActionPromptDelete
)

// Action is a request the controller hands to its owner. Mutations are
// fire-and-forget from the controller's perspective; the owner performs
// them against the store and triggers a full reload.
type Action struct {
	Type       ActionType
	SourceName string
	TargetName string
	EdgeID     string
	NodeName   string
}

// Controller drives one simulation's interaction state. It is not safe for
// concurrent use; the owning session serializes all access.
type Controller struct {
	engine *sim.Engine
	edges  []graph.Edge
	names  map[string]string // node ID -> ens name
	emit   func(Action)

	state         State
	draggedIdx    int
	candidateIdx  int
	snapped       bool
	connectSource string
	pendingDelete *graph.Edge
}

// NewController builds a controller over the given engine and edge list.
// The emit callback receives every action the user's gestures produce.
func NewController(engine *sim.Engine, nodes []graph.Node, edges []graph.Edge, emit func(Action)) *Controller {
	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names[n.ID] = n.ENSName
	}
	return &Controller{
		engine:       engine,
		edges:        edges,
		names:        names,
		emit:         emit,
		draggedIdx:   -1,
		candidateIdx: -1,
	}
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// DraggedID returns the node ID being dragged, or "" when not dragging.
func (c *Controller) DraggedID() string {
	if c.state != StateDragging {
		return ""
	}
	return c.engine.Node(c.draggedIdx).ID
}

// CandidateID returns the magnetic candidate's node ID during a drag, or
// "" when no candidate is in range.
func (c *Controller) CandidateID() string {
	if c.candidateIdx < 0 {
		return ""
	}
	return c.engine.Node(c.candidateIdx).ID
}

// Snapped reports whether the dragged node is fully snapped onto the
// candidate (snap zone, "will connect here").
func (c *Controller) Snapped() bool { return c.snapped }

// ConnectSource returns the first selected node ID in connect mode, or "".
func (c *Controller) ConnectSource() string { return c.connectSource }

// PendingDelete returns the edge awaiting delete confirmation, if any.
func (c *Controller) PendingDelete() *graph.Edge { return c.pendingDelete }

// PointerDown starts a drag gesture on the given node. Collision and
// repulsion are suspended for the duration so the node moves freely.
func (c *Controller) PointerDown(nodeID string) {
	if c.state != StateIdle {
		return
	}
	idx := c.engine.Index(nodeID)
	if idx < 0 {
		return
	}

	c.state = StateDragging
	c.draggedIdx = idx
	c.candidateIdx = -1
	c.snapped = false

	c.engine.SetCollision(false)
	c.engine.SetChargeStrength(0)
	c.engine.SetAlphaTarget(dragAlphaTarget)
	c.engine.Pin(idx, c.engine.Position(idx))
}

// PointerMove updates the dragged node's pin. Within the magnetic radius
// the pin is pulled toward the nearest other node; within the snap radius
// it is forced exactly onto it.
func (c *Controller) PointerMove(x, y float64) {
	if c.state != StateDragging {
		return
	}

	pointer := r2.Vec{X: x, Y: y}
	target := pointer

	idx, dist := c.nearestOther(pointer)
	if idx >= 0 && dist <= MagnetRadius {
		c.candidateIdx = idx
		candidate := c.engine.Position(idx)
		if dist <= SnapRadius {
			c.snapped = true
			target = candidate
		} else {
			c.snapped = false
			pull := math.Min(1, (MagnetRadius-dist)/(MagnetRadius-SnapRadius)) * MagnetStrength
			target = r2.Add(pointer, r2.Scale(pull, r2.Sub(candidate, pointer)))
		}
	} else {
		c.candidateIdx = -1
		c.snapped = false
	}

	c.engine.Pin(c.draggedIdx, target)
}

// PointerUp ends the drag. Forces are restored, the pin released, and if
// the drop landed on a magnetic candidate with no existing connection
// between the pair, a create-edge action is emitted. An already-connected
// pair is a silent no-op.
func (c *Controller) PointerUp() {
	if c.state != StateDragging {
		return
	}

	c.engine.SetCollision(true)
	c.engine.SetChargeStrength(sim.ChargeStrength)
	c.engine.SetAlphaTarget(0)
	c.engine.Unpin(c.draggedIdx)

	if c.candidateIdx >= 0 {
		source := c.engine.Node(c.draggedIdx)
		candidate := c.engine.Node(c.candidateIdx)
		if !c.connected(source.ID, candidate.ID) {
			c.emit(Action{
				Type:       ActionCreateEdge,
				SourceName: c.names[source.ID],
				TargetName: c.names[candidate.ID],
			})
		}
	}

	c.state = StateIdle
	c.draggedIdx = -1
	c.candidateIdx = -1
	c.snapped = false
}

// EnterConnectMode switches to the two-step connect flow.
func (c *Controller) EnterConnectMode() {
	if c.state != StateIdle {
		return
	}
	c.state = StateConnectMode
	c.connectSource = ""
}

// Cancel leaves connect mode (and clears any pending source selection).
func (c *Controller) Cancel() {
	if c.state == StateConnectMode {
		c.state = StateIdle
		c.connectSource = ""
	}
}

// ClickNode handles a click gesture. In connect mode the first click picks
// the source and the second emits a create-edge action (clicking the source
// again deselects it). Outside connect mode a click navigates to the
// node's profile.
func (c *Controller) ClickNode(nodeID string) {
	if c.engine.Index(nodeID) < 0 {
		return
	}

	if c.state == StateConnectMode {
		switch c.connectSource {
		case "":
			c.connectSource = nodeID
		case nodeID:
			c.connectSource = ""
		default:
			c.emit(Action{
				Type:       ActionCreateEdge,
				SourceName: c.names[c.connectSource],
				TargetName: c.names[nodeID],
			})
			c.connectSource = ""
			c.state = StateIdle
		}
		return
	}

	if c.state == StateIdle {
		c.emit(Action{Type: ActionNavigate, NodeName: c.names[nodeID]})
	}
}

// ClickEdge opens the delete-confirmation flow for an edge.
func (c *Controller) ClickEdge(edgeID string) {
	if c.state != StateIdle {
		return
	}
	for i := range c.edges {
		if c.edges[i].ID == edgeID {
			c.pendingDelete = &c.edges[i]
			c.emit(Action{Type: ActionPromptDelete, EdgeID: edgeID})
			return
		}
	}
}

// ConfirmDelete emits the delete action for the pending edge.
func (c *Controller) ConfirmDelete() {
	if c.pendingDelete == nil {
		return
	}
	c.emit(Action{Type: ActionDeleteEdge, EdgeID: c.pendingDelete.ID})
	c.pendingDelete = nil
}

// CancelDelete dismisses the pending delete confirmation with no effect.
func (c *Controller) CancelDelete() {
	c.pendingDelete = nil
}

// Abort discards any in-flight gesture without emitting actions. A drag
// releases its node and restores the forces it suspended; no edge is
// created for a candidate under the pointer. Used when the client driving
// the gesture goes away without finishing it.
func (c *Controller) Abort() {
	if c.state == StateDragging {
		c.engine.SetCollision(true)
		c.engine.SetChargeStrength(sim.ChargeStrength)
		c.engine.SetAlphaTarget(0)
		c.engine.Unpin(c.draggedIdx)
	}
	c.state = StateIdle
	c.draggedIdx = -1
	c.candidateIdx = -1
	c.snapped = false
	c.connectSource = ""
	c.pendingDelete = nil
}

// nearestOther finds the closest node to p excluding the dragged node.
// Ties keep the first node found in arena order; the scan order is
// implementation-defined, not a contract.
func (c *Controller) nearestOther(p r2.Vec) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i := 0; i < c.engine.Len(); i++ {
		if i == c.draggedIdx {
			continue
		}
		d := r2.Sub(c.engine.Position(i), p)
		dist := math.Hypot(d.X, d.Y)
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best, bestDist
}

// connected reports whether any edge joins the unordered pair (a, b).
func (c *Controller) connected(a, b string) bool {
	for _, e := range c.edges {
		if e.ConnectsPair(a, b) {
			return true
		}
	}
	return false
}
