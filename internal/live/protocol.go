package live

import "github.com/ensmesh/ensmesh/internal/graph"

// Client-to-server message types.
const (
	MsgPointerDown   = "pointerdown"
	MsgPointerMove   = "pointermove"
	MsgPointerUp     = "pointerup"
	MsgClick         = "click"
	MsgEdgeClick     = "edgeclick"
	MsgConnectMode   = "connectmode"
	MsgCancel        = "cancel"
	MsgConfirmDelete = "confirmdelete"
	MsgCancelDelete  = "canceldelete"
	MsgAddNode       = "addnode"
	MsgViewport      = "viewport"
)

// Server-to-client message types.
const (
	MsgGraph        = "graph"
	MsgTick         = "tick"
	MsgNavigate     = "navigate"
	MsgPromptDelete = "promptdelete"
	MsgStatus       = "status"
	MsgError        = "error"
)

// clientMessage is the incoming WebSocket message format. Fields beyond
// Type are populated depending on the message.
type clientMessage struct {
	Type   string  `json:"type"`
	NodeID string  `json:"node_id,omitempty"`
	EdgeID string  `json:"edge_id,omitempty"`
	Name   string  `json:"name,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// serverMessage is the outgoing WebSocket message format.
type serverMessage struct {
	Type    string           `json:"type"`
	Graph   *graph.GraphData `json:"graph,omitempty"`
	Frame   *Frame           `json:"frame,omitempty"`
	Name    string           `json:"name,omitempty"`
	EdgeID  string           `json:"edge_id,omitempty"`
	Status  string           `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// NodePosition is one node's layout position within a tick frame.
type NodePosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Frame is a single simulation tick broadcast to all clients. Interaction
// hints let the renderer highlight the dragged node, the magnetic
// candidate, and the connect-mode selection.
type Frame struct {
	Positions     []NodePosition `json:"positions"`
	Alpha         float64        `json:"alpha"`
	Mode          string         `json:"mode"`
	DraggedID     string         `json:"dragged_id,omitempty"`
	CandidateID   string         `json:"candidate_id,omitempty"`
	Snapped       bool           `json:"snapped,omitempty"`
	ConnectSource string         `json:"connect_source,omitempty"`
	PendingDelete string         `json:"pending_delete,omitempty"`
}
