package compositor

import (
	"github.com/matzehuels/flashaov/pkg/aov"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// Options controls what a reconcile pass builds.
type Options struct {
	// Flags selects which categories get their own output node.
	Flags aov.Flags `json:"flags"`

	// Denoise inserts a denoise stage on every denoisable RGB and light-group
	// slot. When false, unlinked managed denoise nodes are removed.
	Denoise bool `json:"denoise"`

	// PruneSlots removes output slots that are in neither the current spec nor
	// the category's raw bucket. Off by default: existing slots are kept.
	PruneSlots bool `json:"prune_slots"`
}

// DefaultOptions returns the options a new project starts with: Cryptomatte
// in its own file, everything else merged into RGB, denoising on.
func DefaultOptions() Options {
	return Options{
		Flags:   aov.Flags{SeparateCryptomatte: true},
		Denoise: true,
	}
}

// Node colors applied to output nodes.
var (
	ColorBeauty = nodegraph.Color{0.15, 0.25, 0.15}
	ColorData   = nodegraph.Color{0.19, 0.15, 0.25}
)

// categoryColor returns the output node color for c.
func categoryColor(c aov.Category) nodegraph.Color {
	if c == aov.RGB || c == aov.LightGroup {
		return ColorBeauty
	}
	return ColorData
}

// Layout constants, in logical node-editor units.
const (
	sourceX        = -400.0
	outputX        = 800.0
	outputWidth    = 500.0
	layerGap       = 500.0
	stackGap       = 20.0
	userShift      = 200.0
	denoiseOffsetX = -500.0
	denoiseStepY   = -33.0
)
