package graphio

import (
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// Graph is the serialization format for compositing graphs. Used for CLI
// input and output, the HTTP API and snapshot stores.
//
// Nodes and links keep the host's enumeration order so a decoded graph
// reconciles exactly like the original.
type Graph struct {
	ScaleFactor float64 `json:"scale_factor,omitempty"`
	Nodes       []Node  `json:"nodes"`
	Links       []Link  `json:"links"`
}

// Node is the serialized form of a [nodegraph.Node].
type Node struct {
	Name     string           `json:"name"`
	Label    string           `json:"label,omitempty"`
	Type     string           `json:"type"`
	Location nodegraph.Vec2   `json:"location"`
	Width    float64          `json:"width,omitempty"`
	Hidden   bool             `json:"hidden,omitempty"`
	Layer    string           `json:"layer,omitempty"`
	Inputs   []string         `json:"inputs,omitempty"`
	Outputs  []string         `json:"outputs,omitempty"`
	Color    *nodegraph.Color `json:"color,omitempty"` // set only for custom-colored nodes
}

// Link is the serialized form of a [nodegraph.Link].
type Link = nodegraph.Link

// FromGraph converts an in-memory graph to its serialization format.
func FromGraph(g *nodegraph.Graph) Graph {
	out := Graph{Nodes: []Node{}, Links: g.Links()}
	if s, ok := g.ScaleFactor(); ok {
		out.ScaleFactor = s
	}
	for _, n := range g.Nodes() {
		sn := Node{
			Name:     n.Name,
			Label:    n.Label,
			Type:     n.Type.String(),
			Location: n.Location,
			Width:    n.Width,
			Hidden:   n.Hidden,
			Layer:    n.Layer,
			Inputs:   n.Inputs,
			Outputs:  n.Outputs,
		}
		if sn.Label == n.Name {
			sn.Label = ""
		}
		if n.UseColor {
			c := n.Color
			sn.Color = &c
		}
		out.Nodes = append(out.Nodes, sn)
	}
	if out.Links == nil {
		out.Links = []Link{}
	}
	return out
}

// ToGraph builds an in-memory graph from the serialization format. Unknown
// node types, duplicate names, links to missing sockets and more than one
// link into an input are rejected with ErrCodeInvalidGraph.
func ToGraph(data Graph) (*nodegraph.Graph, error) {
	g := nodegraph.New()
	if data.ScaleFactor > 0 {
		g.SetScaleFactor(data.ScaleFactor)
	}
	for i, sn := range data.Nodes {
		if err := errors.ValidateNodeName(sn.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", i)
		}
		t, ok := nodegraph.ParseNodeType(sn.Type)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "node %d (%s): unknown type %q", i, sn.Name, sn.Type)
		}
		n := nodegraph.Node{
			Name:     sn.Name,
			Label:    sn.Label,
			Type:     t,
			Location: sn.Location,
			Width:    sn.Width,
			Hidden:   sn.Hidden,
			Layer:    sn.Layer,
			Inputs:   sn.Inputs,
			Outputs:  sn.Outputs,
		}
		if n.Label == "" {
			n.Label = n.Name
		}
		if sn.Color != nil {
			n.Color = *sn.Color
			n.UseColor = true
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d (%s)", i, sn.Name)
		}
	}
	for i, l := range data.Links {
		if _, taken := g.LinkInto(l.ToNode, l.ToSocket); taken {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "link %d: input %s.%s already linked", i, l.ToNode, l.ToSocket)
		}
		if err := g.Connect(l); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "link %d: %s.%s -> %s.%s", i, l.FromNode, l.FromSocket, l.ToNode, l.ToSocket)
		}
	}
	return g, nil
}
