package aov

import (
	"strings"

	"github.com/matzehuels/flashaov/pkg/scene"
)

// Category is the output grouping a render pass is routed to.
type Category int

const (
	// RGB collects beauty and color-like passes. It always gets an output node
	// when it has content.
	RGB Category = iota
	// Data collects depth, normal, position and similar non-color passes.
	Data
	// Cryptomatte collects ID matte passes, matched by keyword.
	Cryptomatte
	// ShaderAOV collects user-defined shader AOVs, enumerated from the layer.
	ShaderAOV
	// LightGroup collects light-group passes, enumerated from the layer.
	LightGroup
)

// Categories lists every category in canonical processing order.
var Categories = []Category{RGB, Data, Cryptomatte, ShaderAOV, LightGroup}

var categoryNames = [...]string{"rgb", "data", "cryptomatte", "shaderaov", "lightgroup"}

// String returns the lowercase token used in managed node names.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory maps a node-name token back to its Category.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return 0, false
}

// cryptoKeywords are matched case-insensitively as substrings.
var cryptoKeywords = []string{"cryptomatte", "crypto"}

// dataPasses are the exact pass names routed to Data.
var dataPasses = map[string]bool{
	"Depth":              true,
	"Mist":               true,
	"Position":           true,
	"Normal":             true,
	"Vector":             true,
	"UV":                 true,
	"IndexOB":            true,
	"IndexMA":            true,
	"Debug Sample Count": true,
	"Denoising Depth":    true,
	"Denoising Normal":   true,
	"Denoising Albedo":   true,
}

// colorPasses are the exact pass names routed to RGB.
var colorPasses = map[string]bool{
	"Image":                true,
	"Alpha":                true,
	"DiffDir":              true,
	"DiffInd":              true,
	"DiffCol":              true,
	"GlossDir":             true,
	"GlossInd":             true,
	"GlossCol":             true,
	"TransDir":             true,
	"TransInd":             true,
	"TransCol":             true,
	"VolumeDir":            true,
	"VolumeInd":            true,
	"Emit":                 true,
	"Env":                  true,
	"AO":                   true,
	"Shadow Catcher":       true,
	"Noisy Image":          true,
	"Noisy Shadow Catcher": true,
	"Shadow":               true,
	"Transp":               true,
}

// Classify maps a pass name to its category. Cryptomatte keywords take
// precedence over the exact-name sets. Passes matching nothing report false
// and are excluded from automatic routing.
//
// ShaderAOV and LightGroup are never returned: those passes come from the
// layer's own AOV and light-group lists, see [ClassifyLayer].
func Classify(name string) (Category, bool) {
	lower := strings.ToLower(name)
	for _, kw := range cryptoKeywords {
		if strings.Contains(lower, kw) {
			return Cryptomatte, true
		}
	}
	if dataPasses[name] {
		return Data, true
	}
	if colorPasses[name] {
		return RGB, true
	}
	return 0, false
}

// DenoiseSlots returns the output slot names eligible for a denoise stage:
// the layer's RGB passes, with Image as "rgb" and Alpha skipped, followed by
// its light groups.
func DenoiseSlots(b Buckets) []string {
	out := make([]string, 0, len(b[RGB])+len(b[LightGroup]))
	for _, name := range b[RGB] {
		switch name {
		case "Alpha":
		case "Image":
			out = append(out, SlotRGB)
		default:
			out = append(out, name)
		}
	}
	return append(out, b[LightGroup]...)
}

// Buckets holds classified pass names per category in layer order.
type Buckets map[Category][]string

// ClassifyLayer sorts the enabled passes of a layer into buckets. Shader AOVs
// and light groups are copied from the layer's own lists.
func ClassifyLayer(l scene.Layer) Buckets {
	b := Buckets{}
	for _, p := range l.Passes {
		if !p.Enabled || p.Name == "" {
			continue
		}
		if c, ok := Classify(p.Name); ok {
			b[c] = append(b[c], p.Name)
		}
	}
	if len(l.AOVs) > 0 {
		b[ShaderAOV] = append([]string(nil), l.AOVs...)
	}
	if len(l.LightGroups) > 0 {
		b[LightGroup] = append([]string(nil), l.LightGroups...)
	}
	return b
}
