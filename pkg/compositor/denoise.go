package compositor

import (
	"slices"

	"github.com/matzehuels/flashaov/pkg/aov"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/scene"
)

// Source sockets feeding the denoise guide inputs.
const (
	DenoisingNormal = "Denoising Normal"
	DenoisingAlbedo = "Denoising Albedo"
)

var denoiseGuides = []ExtraEdge{
	{FromSocket: DenoisingNormal, ToSocket: nodegraph.SocketNormal},
	{FromSocket: DenoisingAlbedo, ToSocket: nodegraph.SocketAlbedo},
}

// insertDenoise places a denoise node on every eligible slot of the layer's
// RGB and light-group outputs that is fed directly by the layer's source.
// Slots already behind a denoise node, or behind any other node, are left
// alone. Insertions on one output node step downward from its position.
func (p *pass) insertDenoise(l scene.Layer) {
	src := SourceKey(l.Name).Name()
	eligible := aov.DenoiseSlots(aov.ClassifyLayer(l))

	for _, c := range []aov.Category{aov.RGB, aov.LightGroup} {
		out, ok := p.host.Node(OutputKey(l.Name, c).Name())
		if !ok || out.Type != nodegraph.TypeOutputFile {
			continue
		}
		offset := 0.0
		for _, slot := range slices.Clone(out.Inputs) {
			if !slices.Contains(eligible, slot) {
				continue
			}
			link, ok := p.host.LinkInto(out.Name, slot)
			if !ok || link.FromNode != src {
				continue
			}

			key := DenoiseKey(l.Name, link.FromSocket)
			_, existed := p.host.Node(key.Name())
			_, err := InsertBetween(p.host, InsertRequest{
				From:       link.FromNode,
				FromSocket: link.FromSocket,
				To:         out.Name,
				ToSocket:   slot,
				Key:        key,
				Type:       nodegraph.TypeDenoise,
				Location:   nodegraph.Vec2{X: out.Location.X + denoiseOffsetX, Y: out.Location.Y + offset},
				Hidden:     true,
				Extra:      denoiseGuides,
			})
			offset += denoiseStepY
			if err != nil {
				p.warn(l.Name, slot, err)
				continue
			}
			if !existed {
				p.report.Stats.DenoiseInserted++
			}
		}
	}
}
