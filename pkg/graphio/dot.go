package graphio

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// DOTOptions configures DOT export.
type DOTOptions struct {
	// Detailed adds the node type and socket lists to node labels.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT, laid out left to right. Link labels
// name the socket pair. Custom-colored nodes keep their color; collapsed nodes
// are drawn dashed.
func ToDOT(g *nodegraph.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", l.FromNode, l.ToNode, l.FromSocket+" → "+l.ToSocket)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *nodegraph.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.Name
	}
	if !detailed {
		return label
	}
	parts := []string{label, n.Type.String()}
	if len(n.Inputs) > 0 {
		parts = append(parts, "in: "+strings.Join(n.Inputs, ", "))
	}
	if len(n.Outputs) > 0 {
		parts = append(parts, "out: "+strings.Join(n.Outputs, ", "))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *nodegraph.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.UseColor {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hexColor(n.Color)), "fontcolor=white")
	}
	if n.Hidden {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func hexColor(c nodegraph.Color) string {
	ch := func(v float64) int { return int(min(max(v, 0), 1)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x", ch(c[0]), ch(c[1]), ch(c[2]))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
