// Package compositor reconciles a compositing node graph with the output
// layout implied by a scene's render layers and a set of category flags.
//
// # Overview
//
// The graph is owned by the host application and may already contain nodes
// from earlier passes, nodes the user authored by hand, or leftovers from
// layers that have since been deleted. A [Reconciler] reads the current graph
// plus the live layers and mutates the graph in place until it matches:
//
//   - one source node per layer, exposing the layer's passes
//   - one output node per non-empty category, with a slot per routed pass
//   - every slot wired from the source, optionally through a denoise node
//
// Nothing is stored between passes. The graph is the only state, so a pass
// can be re-run at any time and a second pass over an unchanged scene makes
// no structural changes.
//
// # Naming
//
// Managed nodes are addressed by a typed [Key]; the node name is derived from
// it with [Key.Name] and always ends in "_Flash". Nodes without the marker are
// user-authored and only touched by stale-layer cleanup and default-node
// removal.
//
//	src := compositor.SourceKey("View1")                 // View1_RLayers_Flash
//	out := compositor.OutputKey("View1", aov.Data)       // View1_data_OutputFile_Flash
//	dn := compositor.DenoiseKey("View1", "Image")        // View1_Image_Denoise_Flash
//
// # Mutation Primitives
//
// [GetOrCreate], [EnsureEdge], [InsertBetween] and [RemoveBetween] are the
// only operations that touch the host. Multi-edge changes are staged in an
// [EdgeBatch] and committed all-or-none; [InsertBetween] rolls back the node
// it created when its batch cannot be committed.
//
// # Failure Policy
//
// Only a missing host or provider aborts a pass. Socket mismatches, failed
// insertions and similar local problems are recorded as [Warning] values in
// the [Report] and processing continues with the next slot or layer.
//
// # Concurrency
//
// A pass mutates the host without locking. Callers must serialize passes
// against the same graph.
package compositor
