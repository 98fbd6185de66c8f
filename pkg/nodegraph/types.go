package nodegraph

// NodeType is the processing kind of a node.
type NodeType int

const (
	// TypeGeneric is any node the compositor does not manage specially.
	TypeGeneric NodeType = iota
	// TypeRenderLayers exposes a render layer's passes as output sockets.
	TypeRenderLayers
	// TypeOutputFile writes each input slot to storage.
	TypeOutputFile
	// TypeDenoise filters an image with optional normal/albedo guides.
	TypeDenoise
	// TypeComposite is the final composite sink.
	TypeComposite
)

var typeNames = [...]string{"GENERIC", "R_LAYERS", "OUTPUT_FILE", "DENOISE", "COMPOSITE"}

// String returns the host identifier for the type.
func (t NodeType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "GENERIC"
	}
	return typeNames[t]
}

// ParseNodeType maps a host identifier back to a NodeType. Unknown names map
// to TypeGeneric and report false.
func ParseNodeType(s string) (NodeType, bool) {
	for i, name := range typeNames {
		if name == s {
			return NodeType(i), true
		}
	}
	return TypeGeneric, false
}

// Socket names of the denoise node.
const (
	SocketImage  = "Image"
	SocketAlpha  = "Alpha"
	SocketNormal = "Normal"
	SocketAlbedo = "Albedo"
)

// template describes the sockets and width a freshly created node gets.
type template struct {
	inputs  []string
	outputs []string
	width   float64
}

var templates = map[NodeType]template{
	TypeGeneric:      {width: 140},
	TypeRenderLayers: {outputs: []string{SocketImage, SocketAlpha}, width: 240},
	TypeOutputFile:   {inputs: []string{SocketImage}, width: 140},
	TypeDenoise:      {inputs: []string{SocketImage, SocketNormal, SocketAlbedo}, outputs: []string{SocketImage}, width: 140},
	TypeComposite:    {inputs: []string{SocketImage, SocketAlpha}, width: 140},
}

// Vec2 is a 2-D canvas coordinate or extent.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is a linear RGB triple in [0, 1].
type Color [3]float64

// Node is a vertex of the compositing graph. Inputs and Outputs are ordered
// socket names; an output-file node's inputs are its file slots.
//
// Fields may be modified directly, except Name and the socket lists (use the
// Graph socket methods so links stay consistent).
type Node struct {
	Name     string
	Label    string
	Type     NodeType
	Location Vec2
	Width    float64
	Hidden   bool
	Layer    string // bound render layer, for TypeRenderLayers
	Inputs   []string
	Outputs  []string
	Color    Color
	UseColor bool
}

// HasInput reports whether the node has an input socket with the given name.
func (n *Node) HasInput(name string) bool { return indexOf(n.Inputs, name) >= 0 }

// HasOutput reports whether the node has an output socket with the given name.
func (n *Node) HasOutput(name string) bool { return indexOf(n.Outputs, name) >= 0 }

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// Link is a directed connection from an output socket to an input socket.
type Link struct {
	FromNode   string `json:"from_node"`
	FromSocket string `json:"from_socket"`
	ToNode     string `json:"to_node"`
	ToSocket   string `json:"to_socket"`
}
