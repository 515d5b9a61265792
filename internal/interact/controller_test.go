package interact

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/ensmesh/ensmesh/internal/graph"
	"github.com/ensmesh/ensmesh/internal/sim"
)

type placed struct {
	id   string
	name string
	pos  r2.Vec
}

// newTestController builds an engine with nodes at fixed positions and a
// controller recording every emitted action.
func newTestController(nodes []placed, edges []graph.Edge) (*Controller, *sim.Engine, *[]Action) {
	ids := make([]string, len(nodes))
	gnodes := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
		gnodes[i] = graph.Node{ID: n.id, ENSName: n.name}
	}

	engine := sim.NewEngine(ids, nil, r2.Vec{})
	for _, n := range nodes {
		idx := engine.Index(n.id)
		engine.Pin(idx, n.pos)
		engine.Unpin(idx)
	}

	var actions []Action
	c := NewController(engine, gnodes, edges, func(a Action) {
		actions = append(actions, a)
	})
	return c, engine, &actions
}

func twoNodes(apos, bpos r2.Vec) []placed {
	return []placed{
		{id: "a", name: "alpha.eth", pos: apos},
		{id: "b", name: "beta.eth", pos: bpos},
	}
}

func TestDragSuspendsAndRestoresForces(t *testing.T) {
	c, engine, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 500}), nil)

	c.PointerDown("a")
	if c.State() != StateDragging {
		t.Fatalf("state = %v, want StateDragging", c.State())
	}
	if engine.CollisionEnabled() {
		t.Fatal("collision still enabled during drag")
	}
	if got := engine.Charge(); got != 0 {
		t.Fatalf("charge = %v during drag, want 0", got)
	}
	if got := engine.AlphaTarget(); got != dragAlphaTarget {
		t.Fatalf("alpha target = %v during drag, want %v", got, dragAlphaTarget)
	}

	c.PointerUp()
	if c.State() != StateIdle {
		t.Fatalf("state = %v after drop, want StateIdle", c.State())
	}
	if !engine.CollisionEnabled() {
		t.Fatal("collision not restored after drop")
	}
	if got := engine.Charge(); got != sim.ChargeStrength {
		t.Fatalf("charge = %v after drop, want %v", got, sim.ChargeStrength)
	}
	if got := engine.AlphaTarget(); got != 0 {
		t.Fatalf("alpha target = %v after drop, want 0", got)
	}
	if n := engine.Node(engine.Index("a")); n.Pinned != nil {
		t.Fatal("node still pinned after drop")
	}
}

func TestPointerDownUnknownNodeIgnored(t *testing.T) {
	c, engine, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 500}), nil)

	c.PointerDown("nope")
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want StateIdle", c.State())
	}
	if !engine.CollisionEnabled() {
		t.Fatal("forces disturbed by unknown pointer down")
	}
}

func TestFreeDragTracksPointer(t *testing.T) {
	c, engine, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 500}), nil)

	c.PointerDown("a")
	c.PointerMove(200, -30)
	if got := engine.Position(engine.Index("a")); got != (r2.Vec{X: 200, Y: -30}) {
		t.Fatalf("dragged position = %+v, want pointer position", got)
	}
	if c.CandidateID() != "" {
		t.Fatalf("candidate = %q outside magnet radius, want none", c.CandidateID())
	}
}

func TestMagnetPullBlendsTowardCandidate(t *testing.T) {
	c, engine, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.PointerDown("a")
	// Pointer 75 units from b: pull = (100-75)/50 * 0.6 = 0.3.
	c.PointerMove(225, 0)

	if c.CandidateID() != "b" {
		t.Fatalf("candidate = %q, want b", c.CandidateID())
	}
	if c.Snapped() {
		t.Fatal("snapped in the pull zone")
	}
	want := r2.Vec{X: 225 + 75*0.3, Y: 0}
	got := engine.Position(engine.Index("a"))
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Fatalf("pulled position = %+v, want %+v", got, want)
	}
}

func TestSnapAtExactRadius(t *testing.T) {
	c, engine, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.PointerDown("a")
	c.PointerMove(250, 0) // exactly SnapRadius from b

	if !c.Snapped() {
		t.Fatal("not snapped at exactly the snap radius")
	}
	if got := engine.Position(engine.Index("a")); got != (r2.Vec{X: 300}) {
		t.Fatalf("snapped position = %+v, want candidate position", got)
	}
}

func TestNoCandidateJustOutsideMagnetRadius(t *testing.T) {
	c, _, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.PointerDown("a")
	c.PointerMove(199.99, 0) // 100.01 from b

	if c.CandidateID() != "" {
		t.Fatalf("candidate = %q at distance 100.01, want none", c.CandidateID())
	}
}

func TestDropOnCandidateCreatesEdge(t *testing.T) {
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.PointerDown("a")
	c.PointerMove(260, 0)
	c.PointerUp()

	if len(*actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(*actions))
	}
	a := (*actions)[0]
	if a.Type != ActionCreateEdge || a.SourceName != "alpha.eth" || a.TargetName != "beta.eth" {
		t.Fatalf("unexpected action %+v", a)
	}
}

func TestDropOnConnectedPairIsNoOp(t *testing.T) {
	edges := []graph.Edge{{ID: "e1", Source: "b", Target: "a"}}
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), edges)

	c.PointerDown("a")
	c.PointerMove(260, 0)
	c.PointerUp()

	if len(*actions) != 0 {
		t.Fatalf("got %d actions for an already-connected pair, want 0", len(*actions))
	}
}

func TestDropWithoutCandidateIsNoOp(t *testing.T) {
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.PointerDown("a")
	c.PointerMove(50, 50)
	c.PointerUp()

	if len(*actions) != 0 {
		t.Fatalf("got %d actions for a free drop, want 0", len(*actions))
	}
}

func TestNearestCandidateWins(t *testing.T) {
	nodes := []placed{
		{id: "a", name: "alpha.eth", pos: r2.Vec{}},
		{id: "b", name: "beta.eth", pos: r2.Vec{X: 300}},
		{id: "c", name: "gamma.eth", pos: r2.Vec{X: 300, Y: 90}},
	}
	c, _, _ := newTestController(nodes, nil)

	c.PointerDown("a")
	c.PointerMove(300, 60) // 60 from b, 30 from c

	if c.CandidateID() != "c" {
		t.Fatalf("candidate = %q, want nearest node c", c.CandidateID())
	}
}

func TestConnectModeFlow(t *testing.T) {
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.EnterConnectMode()
	if c.State() != StateConnectMode {
		t.Fatalf("state = %v, want StateConnectMode", c.State())
	}

	c.ClickNode("a")
	if c.ConnectSource() != "a" {
		t.Fatalf("connect source = %q, want a", c.ConnectSource())
	}

	// Clicking the source again deselects it.
	c.ClickNode("a")
	if c.ConnectSource() != "" {
		t.Fatalf("connect source = %q after re-click, want empty", c.ConnectSource())
	}
	if c.State() != StateConnectMode {
		t.Fatal("re-clicking the source left connect mode")
	}

	c.ClickNode("a")
	c.ClickNode("b")
	if len(*actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(*actions))
	}
	a := (*actions)[0]
	if a.Type != ActionCreateEdge || a.SourceName != "alpha.eth" || a.TargetName != "beta.eth" {
		t.Fatalf("unexpected action %+v", a)
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %v after connect, want StateIdle", c.State())
	}
}

func TestCancelLeavesConnectMode(t *testing.T) {
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.EnterConnectMode()
	c.ClickNode("a")
	c.Cancel()

	if c.State() != StateIdle {
		t.Fatalf("state = %v after cancel, want StateIdle", c.State())
	}
	if c.ConnectSource() != "" {
		t.Fatal("connect source survived cancel")
	}
	if len(*actions) != 0 {
		t.Fatalf("got %d actions, want 0", len(*actions))
	}
}

func TestClickNavigates(t *testing.T) {
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	c.ClickNode("b")

	if len(*actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(*actions))
	}
	a := (*actions)[0]
	if a.Type != ActionNavigate || a.NodeName != "beta.eth" {
		t.Fatalf("unexpected action %+v", a)
	}
}

func TestEdgeDeleteFlow(t *testing.T) {
	edges := []graph.Edge{{ID: "e1", Source: "a", Target: "b"}}
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), edges)

	c.ClickEdge("e1")
	if c.PendingDelete() == nil || c.PendingDelete().ID != "e1" {
		t.Fatalf("pending delete = %+v, want edge e1", c.PendingDelete())
	}
	if len(*actions) != 1 || (*actions)[0].Type != ActionPromptDelete {
		t.Fatalf("got actions %+v, want one prompt-delete", *actions)
	}

	c.ConfirmDelete()
	if len(*actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(*actions))
	}
	a := (*actions)[1]
	if a.Type != ActionDeleteEdge || a.EdgeID != "e1" {
		t.Fatalf("unexpected action %+v", a)
	}
	if c.PendingDelete() != nil {
		t.Fatal("pending delete survived confirmation")
	}

	// Confirming again with nothing pending is a no-op.
	c.ConfirmDelete()
	if len(*actions) != 2 {
		t.Fatalf("got %d actions after stray confirm, want 2", len(*actions))
	}
}

func TestCancelDelete(t *testing.T) {
	edges := []graph.Edge{{ID: "e1", Source: "a", Target: "b"}}
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), edges)

	c.ClickEdge("e1")
	c.CancelDelete()

	if c.PendingDelete() != nil {
		t.Fatal("pending delete survived cancel")
	}
	for _, a := range *actions {
		if a.Type == ActionDeleteEdge {
			t.Fatal("cancel emitted a delete action")
		}
	}
}

func TestAbortReleasesDragWithoutEdge(t *testing.T) {
	c, engine, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

	// Drag a right onto b so a drop here would create an edge.
	c.PointerDown("a")
	c.PointerMove(299, 0)
	if !c.Snapped() {
		t.Fatal("expected snap before abort")
	}

	c.Abort()

	if c.State() != StateIdle {
		t.Fatalf("state = %v after abort, want StateIdle", c.State())
	}
	if len(*actions) != 0 {
		t.Fatalf("abort emitted %d actions, want none", len(*actions))
	}
	if !engine.CollisionEnabled() {
		t.Fatal("collision not restored after abort")
	}
	if got := engine.Charge(); got != sim.ChargeStrength {
		t.Fatalf("charge = %v after abort, want %v", got, sim.ChargeStrength)
	}
	if got := engine.AlphaTarget(); got != 0 {
		t.Fatalf("alpha target = %v after abort, want 0", got)
	}
	if engine.Node(engine.Index("a")).Pinned != nil {
		t.Fatal("node still pinned after abort")
	}
}

func TestAbortClearsConnectModeAndPrompt(t *testing.T) {
	edges := []graph.Edge{{ID: "e1", Source: "a", Target: "b"}}
	c, _, actions := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), edges)

	c.EnterConnectMode()
	c.ClickNode("a")
	c.Abort()
	if c.State() != StateIdle || c.ConnectSource() != "" {
		t.Fatalf("connect mode survived abort: state %v source %q", c.State(), c.ConnectSource())
	}

	c.ClickEdge("e1")
	c.Abort()
	if c.PendingDelete() != nil {
		t.Fatal("pending delete survived abort")
	}
	c.ConfirmDelete()
	for _, a := range *actions {
		if a.Type == ActionDeleteEdge || a.Type == ActionCreateEdge {
			t.Fatalf("abort leaked a mutation action: %v", a.Type)
		}
	}
}

// TestMagnetZones exercises the three drag zones over random pointer
// distances: full snap up to the snap radius, blended pull up to the magnet
// radius, untouched beyond it.
func TestMagnetZones(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dist := rapid.Float64Range(1, 300).Draw(t, "dist")
		angle := rapid.Float64Range(0, 2*math.Pi).Draw(t, "angle")

		candidate := r2.Vec{X: 1000, Y: 1000}
		pointer := r2.Add(candidate, r2.Vec{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)})

		nodes := []placed{
			{id: "a", name: "alpha.eth", pos: r2.Vec{}},
			{id: "b", name: "beta.eth", pos: candidate},
		}
		c, engine, _ := newTestController(nodes, nil)

		c.PointerDown("a")
		c.PointerMove(pointer.X, pointer.Y)
		got := engine.Position(engine.Index("a"))

		// Float round-trip through cos/sin can land a hair past the
		// requested distance, so measure what the controller saw.
		d := r2.Sub(candidate, pointer)
		actual := math.Hypot(d.X, d.Y)

		switch {
		case actual <= SnapRadius:
			if !c.Snapped() {
				t.Fatalf("distance %v: not snapped", actual)
			}
			if got != candidate {
				t.Fatalf("distance %v: position %+v, want candidate", actual, got)
			}
		case actual <= MagnetRadius:
			if c.CandidateID() != "b" || c.Snapped() {
				t.Fatalf("distance %v: candidate %q snapped %v", actual, c.CandidateID(), c.Snapped())
			}
			pull := math.Min(1, (MagnetRadius-actual)/(MagnetRadius-SnapRadius)) * MagnetStrength
			want := r2.Add(pointer, r2.Scale(pull, r2.Sub(candidate, pointer)))
			if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
				t.Fatalf("distance %v: position %+v, want %+v", actual, got, want)
			}
		default:
			if c.CandidateID() != "" {
				t.Fatalf("distance %v: unexpected candidate %q", actual, c.CandidateID())
			}
			if got != pointer {
				t.Fatalf("distance %v: position %+v, want pointer", actual, got)
			}
		}
	})
}

// TestDragNeutrality checks that any down/move/up sequence leaves the
// force configuration exactly as it found it.
func TestDragNeutrality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, engine, _ := newTestController(twoNodes(r2.Vec{}, r2.Vec{X: 300}), nil)

		moves := rapid.IntRange(0, 10).Draw(t, "moves")
		c.PointerDown("a")
		for i := 0; i < moves; i++ {
			x := rapid.Float64Range(-500, 500).Draw(t, "x")
			y := rapid.Float64Range(-500, 500).Draw(t, "y")
			c.PointerMove(x, y)
		}
		c.PointerUp()

		if !engine.CollisionEnabled() {
			t.Fatal("collision left disabled")
		}
		if engine.Charge() != sim.ChargeStrength {
			t.Fatalf("charge left at %v", engine.Charge())
		}
		if engine.AlphaTarget() != 0 {
			t.Fatalf("alpha target left at %v", engine.AlphaTarget())
		}
		if engine.Node(engine.Index("a")).Pinned != nil {
			t.Fatal("node left pinned")
		}
	})
}
