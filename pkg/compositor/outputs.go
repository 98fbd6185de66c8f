package compositor

import (
	"slices"
	"strings"

	"github.com/matzehuels/flashaov/pkg/aov"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/scene"
)

// reconcileOutputs gets or creates one output node per non-empty category of
// spec, stacked downward from y, and returns them in category order.
func (p *pass) reconcileOutputs(l scene.Layer, buckets aov.Buckets, spec aov.Spec, y float64) []*nodegraph.Node {
	var outs []*nodegraph.Node
	for _, c := range spec.Categories() {
		key := OutputKey(l.Name, c)
		out, created, err := GetOrCreate(p.host, key, nodegraph.TypeOutputFile, nodegraph.Vec2{X: outputX, Y: y})
		if err != nil {
			p.warn(l.Name, "", err)
			continue
		}
		p.counted(created)

		if created {
			if err := p.host.ClearInputs(out.Name); err != nil {
				p.warn(l.Name, "", errors.Wrap(errors.ErrCodeInvalidGraph, err, "clear %s", out.Name))
				continue
			}
		} else if p.opts.PruneSlots {
			p.pruneSlots(l.Name, out, spec.Slots(c), buckets[c])
		}
		for _, slot := range spec.Slots(c) {
			if out.HasInput(slot) {
				continue
			}
			if err := p.host.AddInput(out.Name, slot); err != nil {
				p.warn(l.Name, slot, errors.Wrap(errors.ErrCodeInvalidGraph, err, "add slot to %s", out.Name))
				continue
			}
			p.report.Stats.SlotsAdded++
		}

		out.UseColor = true
		out.Color = categoryColor(c)
		out.Width = outputWidth
		out.Label = l.Name + " " + c.String()

		outs = append(outs, out)
		y = p.engine.StackBelow(p.footprint(out), stackGap)
	}
	return outs
}

// pruneSlots removes slots of out that are in neither the spec nor the raw
// category bucket, together with their links.
func (p *pass) pruneSlots(layer string, out *nodegraph.Node, want, raw []string) {
	for _, slot := range slices.Clone(out.Inputs) {
		if slices.Contains(want, slot) || slices.Contains(raw, slot) {
			continue
		}
		if err := p.host.RemoveInput(out.Name, slot); err != nil {
			p.warn(layer, slot, errors.Wrap(errors.ErrCodeInvalidGraph, err, "prune slot of %s", out.Name))
			continue
		}
		p.report.Stats.SlotsPruned++
	}
}

// removeDisabledOutputs deletes every output node of a live layer whose
// category is merged into RGB or has nothing to write.
func (p *pass) removeDisabledOutputs() {
	for _, l := range p.layers {
		spec := aov.Aggregate(aov.ClassifyLayer(l), p.opts.Flags)
		for _, c := range aov.Categories {
			if p.opts.Flags.Separate(c) && spec.Has(c) {
				continue
			}
			name := OutputKey(l.Name, c).Name()
			if n, ok := p.host.Node(name); ok && n.Type == nodegraph.TypeOutputFile {
				p.logger.Debug("removing output", "layer", l.Name, "category", c)
				p.remove(name)
			}
		}
	}
}

// ManagedOutputs indexes the managed output nodes of every live layer by
// layer name and category. Nodes of removed layers, unknown categories or the
// wrong type are skipped.
func ManagedOutputs(h Host, pr Provider) map[string]map[aov.Category]*nodegraph.Node {
	live := make(map[string]bool)
	for _, l := range pr.ViewLayers() {
		live[l.Name] = true
	}
	out := make(map[string]map[aov.Category]*nodegraph.Node)
	for _, n := range h.Nodes() {
		if n.Type != nodegraph.TypeOutputFile || !strings.HasSuffix(n.Name, outputSuffix) {
			continue
		}
		key, ok := ParseKey(n.Name)
		if !ok || key.Role != RoleOutput || !live[key.Layer] {
			continue
		}
		if out[key.Layer] == nil {
			out[key.Layer] = make(map[aov.Category]*nodegraph.Node)
		}
		out[key.Layer][key.Category] = n
	}
	return out
}
