package aov

import "slices"

// SlotRGB is the combined beauty slot. The source exposes it as "Image".
const SlotRGB = "rgb"

// dataExclusions feed other stages (denoising, ID masks) and are never written
// out directly.
var dataExclusions = map[string]bool{
	"Denoising Normal":   true,
	"Denoising Albedo":   true,
	"Debug Sample Count": true,
	"IndexOB":            true,
	"IndexMA":            true,
}

// Flags selects which categories get their own output node. RGB is always
// separate; the remaining categories merge into RGB when their flag is false.
type Flags struct {
	SeparateData        bool `json:"separate_data" toml:"data"`
	SeparateCryptomatte bool `json:"separate_cryptomatte" toml:"cryptomatte"`
	SeparateShaderAOV   bool `json:"separate_shader_aov" toml:"shader_aov"`
	SeparateLightGroup  bool `json:"separate_light_group" toml:"light_group"`
}

// Separate reports whether c is routed to its own output node.
func (f Flags) Separate(c Category) bool {
	switch c {
	case RGB:
		return true
	case Data:
		return f.SeparateData
	case Cryptomatte:
		return f.SeparateCryptomatte
	case ShaderAOV:
		return f.SeparateShaderAOV
	case LightGroup:
		return f.SeparateLightGroup
	}
	return false
}

// Spec is the desired slot list per category output node. Slot lists are
// ordered and free of duplicates. Only non-empty categories are present.
type Spec map[Category][]string

// Slots returns the slots for c, or nil.
func (s Spec) Slots(c Category) []string { return s[c] }

// Has reports whether c has at least one slot.
func (s Spec) Has(c Category) bool { return len(s[c]) > 0 }

// Categories returns the non-empty categories in canonical order.
func (s Spec) Categories() []Category {
	var out []Category
	for _, c := range Categories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Aggregate turns classified buckets into the final output spec. The steps
// run in a fixed order because each consumes the previous one's result:
//
//  1. RGB: "Image" becomes "rgb", "Alpha" is dropped
//  2. Data: auxiliary passes (denoising inputs, index passes, sample count) are dropped
//  3. Every non-separate category is appended onto RGB and emptied
//
// The input buckets are not modified.
func Aggregate(b Buckets, f Flags) Spec {
	rgb := make([]string, 0, len(b[RGB]))
	for _, name := range b[RGB] {
		switch name {
		case "Alpha":
			continue
		case "Image":
			rgb = append(rgb, SlotRGB)
		default:
			rgb = append(rgb, name)
		}
	}

	work := map[Category][]string{RGB: rgb}
	for _, name := range b[Data] {
		if !dataExclusions[name] {
			work[Data] = append(work[Data], name)
		}
	}
	for _, c := range []Category{Cryptomatte, ShaderAOV, LightGroup} {
		work[c] = slices.Clone(b[c])
	}

	for _, c := range Categories[1:] {
		if f.Separate(c) {
			continue
		}
		work[RGB] = append(work[RGB], work[c]...)
		work[c] = nil
	}

	spec := Spec{}
	for c, names := range work {
		if names = dedupe(names); len(names) > 0 {
			spec[c] = names
		}
	}
	return spec
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
