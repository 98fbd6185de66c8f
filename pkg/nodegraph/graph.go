package nodegraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidName is returned by [Graph.AddNode] when the node name is empty.
	ErrInvalidName = errors.New("node name must not be empty")

	// ErrDuplicateNode is returned by [Graph.AddNode] when a node with the same
	// name already exists.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrNodeNotFound is returned when an operation references a node that is
	// not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrSocketNotFound is returned by [Graph.Connect] when either socket name
	// does not exist on its node.
	ErrSocketNotFound = errors.New("socket not found")

	// ErrDuplicateSocket is returned by [Graph.AddInput] when the input exists.
	ErrDuplicateSocket = errors.New("duplicate socket")

	// ErrSelfLink is returned by [Graph.Connect] for a node linked to itself.
	ErrSelfLink = errors.New("link endpoints must differ")

	// ErrDanglingLink is returned by [Graph.Validate] when a link references a
	// missing node or socket. This indicates graph corruption.
	ErrDanglingLink = errors.New("dangling link")

	// ErrMultipleInputs is returned by [Graph.Validate] when more than one link
	// terminates at the same input socket.
	ErrMultipleInputs = errors.New("input socket has more than one link")
)

// Dimension constants used by [Graph.Dimensions], in logical units.
const (
	headerHeight    = 36.0
	rowHeight       = 22.0
	footerHeight    = 12.0
	collapsedHeight = 32.0
)

// Graph is a name-addressed, mutable compositing node graph. Each input
// socket accepts at most one link; connecting to an occupied input replaces
// the previous link.
//
// Nodes enumerate in insertion order. The zero value is not usable - use New.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes map[string]*Node
	order []string
	links []Link

	scale      float64
	scaleKnown bool
}

// New creates an empty graph with no known scale factor.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// SetScaleFactor records the host's device/UI scale factor. Node dimensions
// are reported in device pixels, multiplied by this factor.
func (g *Graph) SetScaleFactor(f float64) {
	g.scale = f
	g.scaleKnown = f > 0
}

// ScaleFactor returns the recorded scale factor and whether one is known.
func (g *Graph) ScaleFactor() (float64, bool) { return g.scale, g.scaleKnown }

// AddNode inserts n as-is. Returns ErrInvalidName for an empty name or
// ErrDuplicateNode if the name is taken. Nil socket lists stay nil.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.Name == "" {
		return nil, ErrInvalidName
	}
	if _, exists := g.nodes[n.Name]; exists {
		return nil, ErrDuplicateNode
	}
	node := &n
	node.Inputs = slices.Clone(n.Inputs)
	node.Outputs = slices.Clone(n.Outputs)
	g.nodes[node.Name] = node
	g.order = append(g.order, node.Name)
	return node, nil
}

// NewNode creates a node of type t with the type's default sockets and width.
func (g *Graph) NewNode(t NodeType, name string, loc Vec2) (*Node, error) {
	tpl := templates[t]
	return g.AddNode(Node{
		Name:     name,
		Label:    name,
		Type:     t,
		Location: loc,
		Width:    tpl.width,
		Inputs:   tpl.inputs,
		Outputs:  tpl.outputs,
	})
}

// Node returns the node with the given name and true, or nil and false.
// The returned pointer refers to the node in the graph.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links in the graph.
func (g *Graph) LinkCount() int { return len(g.links) }

// RemoveNode deletes a node and every link touching it.
// Returns ErrNodeNotFound if the node does not exist.
func (g *Graph) RemoveNode(name string) error {
	if _, ok := g.nodes[name]; !ok {
		return ErrNodeNotFound
	}
	delete(g.nodes, name)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == name })
	g.links = slices.DeleteFunc(g.links, func(l Link) bool { return l.FromNode == name || l.ToNode == name })
	return nil
}

// AddInput appends an input socket. Returns ErrDuplicateSocket if present.
func (g *Graph) AddInput(node, socket string) error {
	n, ok := g.nodes[node]
	if !ok {
		return ErrNodeNotFound
	}
	if n.HasInput(socket) {
		return ErrDuplicateSocket
	}
	n.Inputs = append(n.Inputs, socket)
	return nil
}

// RemoveInput deletes an input socket and its link. Missing sockets are a no-op.
func (g *Graph) RemoveInput(node, socket string) error {
	n, ok := g.nodes[node]
	if !ok {
		return ErrNodeNotFound
	}
	n.Inputs = slices.DeleteFunc(n.Inputs, func(s string) bool { return s == socket })
	g.links = slices.DeleteFunc(g.links, func(l Link) bool { return l.ToNode == node && l.ToSocket == socket })
	return nil
}

// ClearInputs deletes every input socket and inbound link of a node.
func (g *Graph) ClearInputs(node string) error {
	n, ok := g.nodes[node]
	if !ok {
		return ErrNodeNotFound
	}
	n.Inputs = nil
	g.links = slices.DeleteFunc(g.links, func(l Link) bool { return l.ToNode == node })
	return nil
}

// SetOutputs replaces a node's output sockets. Links leaving sockets that no
// longer exist are dropped.
func (g *Graph) SetOutputs(node string, sockets []string) error {
	n, ok := g.nodes[node]
	if !ok {
		return ErrNodeNotFound
	}
	n.Outputs = slices.Clone(sockets)
	g.links = slices.DeleteFunc(g.links, func(l Link) bool {
		return l.FromNode == node && !n.HasOutput(l.FromSocket)
	})
	return nil
}

// Connect adds a link. Both nodes and sockets must exist. An identical link
// is a no-op; any other link into the same input socket is replaced.
func (g *Graph) Connect(l Link) error {
	from, ok := g.nodes[l.FromNode]
	if !ok {
		return ErrNodeNotFound
	}
	to, ok := g.nodes[l.ToNode]
	if !ok {
		return ErrNodeNotFound
	}
	if l.FromNode == l.ToNode {
		return ErrSelfLink
	}
	if !from.HasOutput(l.FromSocket) || !to.HasInput(l.ToSocket) {
		return ErrSocketNotFound
	}
	if slices.Contains(g.links, l) {
		return nil
	}
	g.links = slices.DeleteFunc(g.links, func(e Link) bool { return e.ToNode == l.ToNode && e.ToSocket == l.ToSocket })
	g.links = append(g.links, l)
	return nil
}

// Disconnect removes l and reports whether it existed.
func (g *Graph) Disconnect(l Link) bool {
	before := len(g.links)
	g.links = slices.DeleteFunc(g.links, func(e Link) bool { return e == l })
	return len(g.links) != before
}

// Links returns a copy of all links in insertion order.
func (g *Graph) Links() []Link { return slices.Clone(g.links) }

// LinkInto returns the link terminating at the given input socket.
func (g *Graph) LinkInto(node, socket string) (Link, bool) {
	for _, l := range g.links {
		if l.ToNode == node && l.ToSocket == socket {
			return l, true
		}
	}
	return Link{}, false
}

// LinksTo returns the inbound links of a node ordered by input socket.
func (g *Graph) LinksTo(node string) []Link {
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	var out []Link
	for _, socket := range n.Inputs {
		if l, ok := g.LinkInto(node, socket); ok {
			out = append(out, l)
		}
	}
	return out
}

// LinksFrom returns the outbound links of a node ordered by output socket,
// then by insertion.
func (g *Graph) LinksFrom(node string) []Link {
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	var out []Link
	for _, socket := range n.Outputs {
		for _, l := range g.links {
			if l.FromNode == node && l.FromSocket == socket {
				out = append(out, l)
			}
		}
	}
	return out
}

// Dimensions returns the node's on-screen size in device pixels. Collapsed
// nodes have a fixed height; expanded nodes grow with their socket count.
func (g *Graph) Dimensions(n *Node) Vec2 {
	scale := 1.0
	if g.scaleKnown {
		scale = g.scale
	}
	h := collapsedHeight
	if !n.Hidden {
		h = headerHeight + rowHeight*float64(len(n.Inputs)+len(n.Outputs)) + footerHeight
	}
	return Vec2{X: n.Width * scale, Y: h * scale}
}

// Validate checks that every link references existing nodes and sockets and
// that no input socket has more than one link.
func (g *Graph) Validate() error {
	inputs := make(map[[2]string]bool, len(g.links))
	for _, l := range g.links {
		from, okF := g.nodes[l.FromNode]
		to, okT := g.nodes[l.ToNode]
		if !okF || !okT || !from.HasOutput(l.FromSocket) || !to.HasInput(l.ToSocket) {
			return ErrDanglingLink
		}
		key := [2]string{l.ToNode, l.ToSocket}
		if inputs[key] {
			return ErrMultipleInputs
		}
		inputs[key] = true
	}
	return nil
}
