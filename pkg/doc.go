// Package pkg provides the core libraries for flashaov, a reconciler that
// keeps a compositing node graph in line with a scene's render layers.
//
// # Overview
//
// For every render layer flashaov maintains one source node, one output file
// node per pass category and, optionally, a denoise stage in front of each
// beauty slot. A pass is idempotent: running it twice over the same scene
// leaves the graph unchanged. The pkg directory is organized as follows:
//
//  1. [aov] - Pass classification and output slot specs
//  2. [nodegraph] - The in-memory compositing graph
//  3. [layout] - Node footprints and vertical stacking
//  4. [compositor] - The reconcile pass itself
//  5. [scene], [graphio], [store] - Inputs, snapshots and persistence
//
// # Architecture
//
// The typical data flow through a reconcile pass:
//
//	Scene (TOML)          Graph snapshot (JSON / store)
//	      ↓                         ↓
//	  [aov] classify   →   [compositor] reconcile
//	                                ↓
//	               graph snapshot + pass report
//
// # Quick Start
//
//	sc, _ := scene.LoadFile("shot_010.toml")
//	g, _ := graphio.ReadFile("comp.json")
//
//	rec := compositor.NewReconciler(
//	    compositor.GraphContext{Host: g, Provider: sc},
//	    compositor.DefaultOptions(), logger)
//	report, _ := rec.Reconcile(ctx)
//
//	_ = graphio.WriteFile(g, "comp.json")
//
// # Main Packages
//
// [aov] - Category routing (rgb, data, cryptomatte, shader AOVs, light
// groups) and aggregation of buckets into the final per-category slot spec.
//
// [nodegraph] - Named nodes with ordered sockets and single-source input
// links. Insertion order is preserved so snapshots are deterministic.
//
// [compositor] - Source, output and denoise node management, name-based
// ownership, slot linking and the per-pass [compositor.Report].
//
// [graphio] - JSON snapshots, DOT export and in-process SVG rendering.
//
// [store] - Snapshot persistence: file, Redis and null backends with
// namespaced keys.
//
// [observability] - Hook registry for reconcile, store and HTTP events.
//
// [errors] - Coded errors and input validation shared by all packages.
//
// # Testing
//
//	go test ./...                   # All tests
//	go test -short ./...            # Skip Graphviz rendering
//	go test -run Example ./pkg/...  # Examples only
//
// [aov]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/aov
// [nodegraph]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/nodegraph
// [layout]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/layout
// [compositor]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/compositor
// [scene]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/scene
// [graphio]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/graphio
// [store]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flashaov/pkg/errors
package pkg
