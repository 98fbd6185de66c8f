package compositor

import (
	"strings"

	"github.com/matzehuels/flashaov/pkg/aov"
)

// Suffix marks every node this package manages.
const Suffix = "_Flash"

const (
	sourceSuffix  = "_RLayers" + Suffix
	outputSuffix  = "_OutputFile" + Suffix
	denoiseSuffix = "_Denoise" + Suffix
)

// Role is the part a managed node plays in a layer's output graph.
type Role int

const (
	// RoleSource is the render-layer node exposing a layer's passes.
	RoleSource Role = iota
	// RoleOutput is a category output-file node.
	RoleOutput
	// RoleDenoise is a denoise stage between a source socket and an output slot.
	RoleDenoise
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleOutput:
		return "output"
	case RoleDenoise:
		return "denoise"
	}
	return "unknown"
}

// Key identifies a managed node. Category is meaningful only for RoleOutput
// and Socket only for RoleDenoise.
type Key struct {
	Layer    string
	Role     Role
	Category aov.Category
	Socket   string
}

// SourceKey returns the key of a layer's source node.
func SourceKey(layer string) Key { return Key{Layer: layer, Role: RoleSource} }

// OutputKey returns the key of a layer's output node for category c.
func OutputKey(layer string, c aov.Category) Key {
	return Key{Layer: layer, Role: RoleOutput, Category: c}
}

// DenoiseKey returns the key of the denoise node fed by a source socket.
func DenoiseKey(layer, socket string) Key {
	return Key{Layer: layer, Role: RoleDenoise, Socket: socket}
}

// Name returns the node name derived from the key. The format is fixed so
// graphs written by earlier versions keep reconciling.
func (k Key) Name() string {
	switch k.Role {
	case RoleOutput:
		return k.Layer + "_" + k.Category.String() + outputSuffix
	case RoleDenoise:
		return k.Layer + "_" + k.Socket + denoiseSuffix
	default:
		return k.Layer + sourceSuffix
	}
}

// IsManaged reports whether name carries the managed-node marker.
func IsManaged(name string) bool { return strings.HasSuffix(name, Suffix) }

// IsDenoiseName reports whether name is a managed denoise node name.
func IsDenoiseName(name string) bool { return strings.HasSuffix(name, denoiseSuffix) }

// ParseKey recovers the key of a managed source or output node. Output names
// split from the right, so layer names may contain underscores. Denoise names
// are ambiguous without the layer list and are not parsed.
func ParseKey(name string) (Key, bool) {
	if layer, ok := strings.CutSuffix(name, sourceSuffix); ok && layer != "" {
		return SourceKey(layer), true
	}
	if stem, ok := strings.CutSuffix(name, outputSuffix); ok {
		i := strings.LastIndexByte(stem, '_')
		if i <= 0 {
			return Key{}, false
		}
		c, ok := aov.ParseCategory(stem[i+1:])
		if !ok {
			return Key{}, false
		}
		return OutputKey(stem[:i], c), true
	}
	return Key{}, false
}

// ownedBy reports whether name is a managed node belonging to layer.
func ownedBy(name, layer string) bool {
	return IsManaged(name) && strings.HasPrefix(name, layer+"_")
}
