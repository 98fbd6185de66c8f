// Package aov classifies render passes into output categories and aggregates
// them into the slot lists each category output node should carry.
//
// # Classification
//
// [Classify] resolves a pass name in a fixed precedence order: a
// case-insensitive Cryptomatte keyword match wins, then exact membership in
// the data set, then exact membership in the color set. Unmatched names are
// dropped silently; they are not routed automatically.
//
// Shader AOVs and light groups are never discovered by name. [ClassifyLayer]
// copies them from the layer's own lists, which are authoritative.
//
// # Aggregation
//
// [Aggregate] applies the category [Flags]: whatever is not separated merges
// into the RGB bucket. The result is a [Spec], rebuilt from scratch on every
// reconcile pass and never persisted.
//
//	b := aov.ClassifyLayer(layer)
//	spec := aov.Aggregate(b, aov.Flags{SeparateCryptomatte: true})
//	for _, c := range spec.Categories() {
//	    fmt.Println(c, spec.Slots(c))
//	}
package aov
