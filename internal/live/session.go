// Package live owns the server side of the interactive graph view: a
// Session couples the stored graph to a running force simulation and an
// interaction controller, and a Hub fans simulation frames out to browser
// clients over WebSocket while feeding their pointer events back in.
package live

import (
	"context"
	"errors"
	"log"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ensmesh/ensmesh/internal/ens"
	"github.com/ensmesh/ensmesh/internal/graph"
	"github.com/ensmesh/ensmesh/internal/interact"
	"github.com/ensmesh/ensmesh/internal/sim"
)

// Session is the single authoritative graph view shared by all connected
// clients. All state behind mu; loads are guarded by a generation counter
// so a slow load can never clobber a newer one.
type Session struct {
	store    *graph.Store
	resolver ens.Resolver

	mu           sync.Mutex
	center       r2.Vec
	gen          int
	data         *graph.GraphData
	engine       *sim.Engine
	controller   *interact.Controller
	actions      []interact.Action
	gestureOwner any
	failed       bool
}

// NewSession creates a session centered on the given viewport.
func NewSession(store *graph.Store, resolver ens.Resolver, width, height float64) *Session {
	return &Session{
		store:    store,
		resolver: resolver,
		center:   r2.Vec{X: width / 2, Y: height / 2},
	}
}

// Outcome is what handling one client message produced: replies go to the
// sending client only, broadcasts to every connected client.
type Outcome struct {
	Reply     []serverMessage
	Broadcast []serverMessage
}

// Load fetches the graph, seeds it when empty, enriches missing profiles,
// and swaps in a fresh simulation. Positions of surviving nodes carry over
// so a reload does not scatter the layout. If a newer load started while
// this one was in flight, its result is discarded.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	data, err := s.store.GetGraphData(ctx)
	if err != nil {
		return s.fail(err)
	}

	if len(data.Nodes) == 0 {
		if err := s.store.Seed(ctx); err != nil {
			return s.fail(err)
		}
		if data, err = s.store.GetGraphData(ctx); err != nil {
			return s.fail(err)
		}
	}

	if err := EnrichAll(ctx, s.store, s.resolver, data.Nodes); err != nil {
		return s.fail(err)
	}
	// Re-fetch to pick up the profiles the enrichment pass wrote.
	if data, err = s.store.GetGraphData(ctx); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.rebuild(data)
	s.failed = false
	return nil
}

func (s *Session) fail(err error) error {
	log.Printf("live: loading graph: %v", err)
	s.mu.Lock()
	s.failed = true
	s.mu.Unlock()
	return err
}

// Loaded reports whether a graph has been loaded into the session.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}

// Failed reports whether the last load attempt failed.
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Snapshot returns the currently loaded graph, or nil before the first
// successful load.
func (s *Session) Snapshot() *graph.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// rebuild replaces the engine and controller for a freshly loaded graph.
// Caller holds mu.
func (s *Session) rebuild(data *graph.GraphData) {
	ids := make([]string, len(data.Nodes))
	index := make(map[string]int, len(data.Nodes))
	for i, n := range data.Nodes {
		ids[i] = n.ID
		index[n.ID] = i
	}

	links := make([]sim.Link, 0, len(data.Edges))
	for _, e := range data.Edges {
		si, ok := index[e.Source]
		if !ok {
			continue
		}
		ti, ok := index[e.Target]
		if !ok {
			continue
		}
		links = append(links, sim.Link{Source: si, Target: ti})
	}

	old := s.engine
	engine := sim.NewEngine(ids, links, s.center)
	if old != nil {
		for i, id := range ids {
			if j := old.Index(id); j >= 0 {
				engine.Pin(i, old.Position(j))
				engine.Unpin(i)
			}
		}
	}

	s.data = data
	s.engine = engine
	s.controller = interact.NewController(engine, data.Nodes, data.Edges, func(a interact.Action) {
		s.actions = append(s.actions, a)
	})
	s.gestureOwner = nil
}

// HandleMessage applies one client message to the interaction controller
// and executes whatever mutations it emits. Any successful mutation
// triggers a full reload and a graph broadcast; the controller itself
// never touches the store. The owner identifies the sending connection so
// an in-flight gesture can be released if that connection goes away.
func (s *Session) HandleMessage(ctx context.Context, owner any, msg clientMessage) Outcome {
	s.mu.Lock()
	if s.controller == nil {
		s.mu.Unlock()
		return Outcome{Reply: []serverMessage{{Type: MsgStatus, Status: "loading"}}}
	}
	wasActive := s.gestureActive()

	switch msg.Type {
	case MsgPointerDown:
		s.controller.PointerDown(msg.NodeID)
	case MsgPointerMove:
		s.controller.PointerMove(msg.X, msg.Y)
	case MsgPointerUp:
		s.controller.PointerUp()
	case MsgClick:
		s.controller.ClickNode(msg.NodeID)
	case MsgEdgeClick:
		s.controller.ClickEdge(msg.EdgeID)
	case MsgConnectMode:
		s.controller.EnterConnectMode()
	case MsgCancel:
		s.controller.Cancel()
	case MsgConfirmDelete:
		s.controller.ConfirmDelete()
	case MsgCancelDelete:
		s.controller.CancelDelete()
	case MsgViewport:
		if msg.Width > 0 && msg.Height > 0 {
			s.center = r2.Vec{X: msg.Width / 2, Y: msg.Height / 2}
			s.engine.SetCenter(s.center)
		}
	case MsgAddNode:
		// Handled below, outside the lock.
	default:
		s.mu.Unlock()
		return Outcome{Reply: []serverMessage{errorMessage("unknown message type: " + msg.Type)}}
	}

	// Ownership follows gesture state: assigned when a message starts a
	// gesture, cleared when the gesture ends.
	if active := s.gestureActive(); !active {
		s.gestureOwner = nil
	} else if !wasActive {
		s.gestureOwner = owner
	}

	actions := s.actions
	s.actions = nil
	s.mu.Unlock()

	var out Outcome
	mutated := false

	if msg.Type == MsgAddNode {
		name := ens.NormalizeName(msg.Name)
		switch {
		case !ens.IsValidName(name):
			out.Reply = append(out.Reply, errorMessage("invalid ENS name"))
		default:
			if _, err := s.store.CreateNode(ctx, name, "", nil); err != nil {
				log.Printf("live: adding node %s: %v", name, err)
				out.Reply = append(out.Reply, errorMessage("failed to add "+name))
			} else {
				mutated = true
			}
		}
	}

	for _, a := range actions {
		switch a.Type {
		case interact.ActionCreateEdge:
			_, err := s.store.CreateEdgeByNames(ctx, a.SourceName, a.TargetName, graph.DefaultRelationshipType)
			switch {
			case errors.Is(err, graph.ErrDuplicateConnection):
				out.Reply = append(out.Reply, errorMessage("This connection already exists"))
			case err != nil:
				log.Printf("live: connecting %s to %s: %v", a.SourceName, a.TargetName, err)
				out.Reply = append(out.Reply, errorMessage("failed to create connection"))
			default:
				mutated = true
			}
		case interact.ActionDeleteEdge:
			if err := s.store.DeleteRelationship(ctx, a.EdgeID); err != nil {
				log.Printf("live: deleting edge %s: %v", a.EdgeID, err)
				out.Reply = append(out.Reply, errorMessage("failed to delete connection"))
			} else {
				mutated = true
			}
		case interact.ActionNavigate:
			out.Reply = append(out.Reply, serverMessage{Type: MsgNavigate, Name: a.NodeName})
		case interact.ActionPromptDelete:
			out.Reply = append(out.Reply, serverMessage{Type: MsgPromptDelete, EdgeID: a.EdgeID})
		}
	}

	if mutated {
		if err := s.Load(ctx); err != nil {
			out.Reply = append(out.Reply, errorMessage("failed to reload graph"))
		} else if snap := s.Snapshot(); snap != nil {
			out.Broadcast = append(out.Broadcast, serverMessage{Type: MsgGraph, Graph: snap})
		}
	}
	return out
}

// gestureActive reports whether the controller holds any gesture state.
// Callers hold mu.
func (s *Session) gestureActive() bool {
	return s.controller.State() != interact.StateIdle || s.controller.PendingDelete() != nil
}

// ReleaseGestures drops any in-flight gesture owned by the given client.
// A connection that dies mid-drag never sends pointerup, and without this
// the shared controller would stay dragging with forces suspended,
// ignoring every other client's input.
func (s *Session) ReleaseGestures(owner any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controller == nil || s.gestureOwner == nil || s.gestureOwner != owner {
		return
	}
	s.controller.Abort()
	s.gestureOwner = nil
	s.actions = nil
}

// Frame advances the simulation one tick and returns the resulting
// positions plus interaction hints, or nil before the first load.
func (s *Session) Frame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}

	s.engine.Step()

	f := &Frame{
		Alpha:     s.engine.Alpha(),
		Positions: make([]NodePosition, 0, s.engine.Len()),
	}
	for i := 0; i < s.engine.Len(); i++ {
		n := s.engine.Node(i)
		f.Positions = append(f.Positions, NodePosition{ID: n.ID, X: n.Pos.X, Y: n.Pos.Y})
	}
	switch s.controller.State() {
	case interact.StateDragging:
		f.Mode = "dragging"
	case interact.StateConnectMode:
		f.Mode = "connect"
	default:
		f.Mode = "idle"
	}
	f.DraggedID = s.controller.DraggedID()
	f.CandidateID = s.controller.CandidateID()
	f.Snapped = s.controller.Snapped()
	f.ConnectSource = s.controller.ConnectSource()
	if e := s.controller.PendingDelete(); e != nil {
		f.PendingDelete = e.ID
	}
	return f
}

func errorMessage(msg string) serverMessage {
	return serverMessage{Type: MsgError, Message: msg}
}
