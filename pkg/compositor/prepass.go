package compositor

import (
	"strings"

	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// Names of the nodes a fresh compositor graph starts with.
const (
	defaultSourceName    = "Render Layers"
	defaultCompositeName = "Composite"
)

func (p *pass) prepass() {
	p.removeStaleLayers()
	p.removeDefaultNodes()
	p.shiftUserNodes()
	p.sweepDenoise()
}

// removeStaleLayers deletes source nodes whose layer is gone or whose bound
// layer no longer matches their name. For layers that are gone, every node
// whose name contains the layer name is deleted too, except managed nodes
// owned by a live layer.
func (p *pass) removeStaleLayers() {
	stale := make(map[string]bool)
	for _, n := range p.host.Nodes() {
		key, ok := ParseKey(n.Name)
		if !ok || key.Role != RoleSource {
			continue
		}
		if p.live[key.Layer] && n.Layer == key.Layer {
			continue
		}
		p.logger.Debug("removing stale source", "node", n.Name, "bound", n.Layer)
		p.remove(n.Name)
		if !p.live[key.Layer] {
			stale[key.Layer] = true
		}
	}
	if len(stale) == 0 {
		return
	}

	for _, n := range p.host.Nodes() {
		owner := p.owner(n.Name, stale)
		if owner != "" && p.live[owner] {
			continue
		}
		for layer := range stale {
			if strings.Contains(n.Name, layer) {
				p.remove(n.Name)
				break
			}
		}
	}
}

// owner returns the longest live or stale layer a managed node name is
// prefixed with, or "" for user nodes.
func (p *pass) owner(name string, stale map[string]bool) string {
	if !IsManaged(name) {
		return ""
	}
	best := ""
	consider := func(layer string) {
		if len(layer) > len(best) && ownedBy(name, layer) {
			best = layer
		}
	}
	for _, l := range p.layers {
		consider(l.Name)
	}
	for layer := range stale {
		consider(layer)
	}
	return best
}

// userNodes returns the nodes without the managed marker.
func (p *pass) userNodes() []*nodegraph.Node {
	var out []*nodegraph.Node
	for _, n := range p.host.Nodes() {
		if n.Name != "" && !IsManaged(n.Name) {
			out = append(out, n)
		}
	}
	return out
}

// removeDefaultNodes deletes the untouched default pair of a new graph.
func (p *pass) removeDefaultNodes() {
	user := p.userNodes()
	if len(user) != 2 {
		return
	}
	names := map[string]bool{user[0].Name: true, user[1].Name: true}
	if !names[defaultSourceName] || !names[defaultCompositeName] {
		return
	}
	p.logger.Debug("removing default nodes")
	for _, n := range user {
		p.remove(n.Name)
	}
}

// shiftUserNodes moves user nodes above y=0 when any of them reaches below
// it, leaving the lower half of the canvas to managed nodes.
func (p *pass) shiftUserNodes() {
	user := p.userNodes()
	if len(user) == 0 {
		return
	}
	b := p.engine.Bounds(p.footprints(user))
	if b.Bottom >= 0 {
		return
	}
	offset := -b.Bottom + userShift
	for _, n := range user {
		n.Location.Y += offset
	}
}

// sweepDenoise deletes managed denoise nodes without an outbound link.
func (p *pass) sweepDenoise() {
	for _, n := range p.host.Nodes() {
		if n.Type != nodegraph.TypeDenoise || !IsDenoiseName(n.Name) {
			continue
		}
		if len(p.host.LinksFrom(n.Name)) > 0 {
			continue
		}
		if removeIfPresent(p.host, n.Name) {
			p.report.Stats.DenoiseRemoved++
		}
	}
}
