// Package graphio reads and writes compositing graphs.
//
// [Graph] is the JSON snapshot format shared by the CLI, the HTTP API and
// the snapshot stores. [ToDOT] exports a graph for Graphviz and [RenderSVG]
// renders that DOT to SVG in-process.
//
//	g, err := graphio.ReadFile("comp.json")
//	...
//	svg, err := graphio.RenderSVG(ctx, graphio.ToDOT(g, graphio.DOTOptions{}))
package graphio
