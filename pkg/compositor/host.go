package compositor

import (
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/scene"
)

// Host is the mutable graph a pass operates on. [nodegraph.Graph] is the
// in-memory implementation; adapters for other node editors implement the
// same contract.
//
// Socket lookups are explicit: Connect must fail, not panic, when a socket is
// absent, and an input socket holds at most one link.
type Host interface {
	Node(name string) (*nodegraph.Node, bool)
	Nodes() []*nodegraph.Node
	NewNode(t nodegraph.NodeType, name string, loc nodegraph.Vec2) (*nodegraph.Node, error)
	RemoveNode(name string) error

	AddInput(node, socket string) error
	RemoveInput(node, socket string) error
	ClearInputs(node string) error
	SetOutputs(node string, sockets []string) error

	Connect(l nodegraph.Link) error
	Disconnect(l nodegraph.Link) bool
	LinkInto(node, socket string) (nodegraph.Link, bool)
	LinksTo(node string) []nodegraph.Link
	LinksFrom(node string) []nodegraph.Link

	// Dimensions returns the node size in device pixels.
	Dimensions(n *nodegraph.Node) nodegraph.Vec2
	// ScaleFactor returns the device/UI scale, or false when unavailable.
	ScaleFactor() (float64, bool)
}

var _ Host = (*nodegraph.Graph)(nil)

// Provider enumerates the live render layers in a stable order.
type Provider interface {
	ViewLayers() []scene.Layer
}

var _ Provider = (*scene.Scene)(nil)

// GraphContext carries the collaborators of a pass.
type GraphContext struct {
	Host     Host
	Provider Provider
}
