package compositor

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flashaov/pkg/aov"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/layout"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/observability"
	"github.com/matzehuels/flashaov/pkg/scene"
)

// Reconciler runs reconcile passes over a graph.
//
// The zero value is not usable; use NewReconciler. A Reconciler holds no
// state between passes and may be reused.
type Reconciler struct {
	Context GraphContext
	Options Options
	Logger  *log.Logger
}

// NewReconciler creates a reconciler. A nil logger uses log.Default().
func NewReconciler(gc GraphContext, opts Options, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{Context: gc, Options: opts, Logger: logger}
}

// Reconcile brings the host graph into agreement with the provider's layers
// and the reconciler's options.
//
// The pass runs in four phases:
//
//  1. prepass: stale-layer cleanup, default-node removal, user-node shift,
//     unlinked denoise sweep
//  2. per layer, in provider order: source node, output nodes, slots, wiring
//  3. disabled or empty category output nodes are removed
//  4. denoise insertion per layer, then a final unlinked denoise sweep
//
// Local failures become warnings in the returned report. An error is
// returned only when the host or provider is missing or ctx is cancelled;
// the graph is left valid in every case.
func (r *Reconciler) Reconcile(ctx context.Context) (*Report, error) {
	if r.Context.Host == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph host is required")
	}
	if r.Context.Provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render layer provider is required")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	start := time.Now()
	layers := r.Context.Provider.ViewLayers()
	p := &pass{
		ctx:    ctx,
		host:   r.Context.Host,
		opts:   r.Options,
		logger: logger,
		engine: layout.NewEngine(r.Context.Host.ScaleFactor()),
		layers: layers,
		live:   make(map[string]bool, len(layers)),
		report: &Report{PassID: uuid.NewString()},
	}
	for _, l := range layers {
		p.live[l.Name] = true
		p.report.Layers = append(p.report.Layers, l.Name)
	}

	hooks := observability.Reconcile()
	hooks.OnPassStart(ctx, p.report.PassID, len(layers))
	logger.Debug("reconcile pass started", "pass", p.report.PassID, "layers", len(layers))

	before := linkSet(p.host)
	err := p.run()
	p.report.Stats.LinksMade = countNew(p.host, before)
	p.report.Duration = time.Since(start)
	hooks.OnPassComplete(ctx, p.report.PassID, len(p.report.Warnings), p.report.Duration, err)
	if err != nil {
		return p.report, err
	}
	logger.Debug("reconcile pass complete",
		"pass", p.report.PassID,
		"created", p.report.Stats.NodesCreated,
		"removed", p.report.Stats.NodesRemoved,
		"warnings", len(p.report.Warnings),
		"duration", p.report.Duration)
	return p.report, nil
}

// pass is the working state of one Reconcile call.
type pass struct {
	ctx    context.Context
	host   Host
	opts   Options
	logger *log.Logger
	engine layout.Engine
	layers []scene.Layer
	live   map[string]bool
	report *Report
}

func (p *pass) run() error {
	if len(p.layers) == 0 {
		// An empty provider leaves the graph untouched.
		p.warn("", "", errors.New(errors.ErrCodeLayerNotFound, "no render layers"))
		return nil
	}

	p.prepass()

	y := 0.0
	for _, l := range p.layers {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		y = p.reconcileLayer(l, y)
	}

	p.removeDisabledOutputs()

	if p.opts.Denoise {
		for _, l := range p.layers {
			if err := p.ctx.Err(); err != nil {
				return err
			}
			p.insertDenoise(l)
		}
	}
	p.sweepDenoise()
	return nil
}

func (p *pass) warn(layer, slot string, err error) {
	w := newWarning(layer, slot, err)
	p.report.Warnings = append(p.report.Warnings, w)
	observability.Reconcile().OnWarning(p.ctx, p.report.PassID, layer, string(w.Code))
	p.logger.Warn("reconcile", "layer", layer, "slot", slot, "err", err)
}

func (p *pass) counted(created bool) {
	if created {
		p.report.Stats.NodesCreated++
	} else {
		p.report.Stats.NodesReused++
	}
}

func (p *pass) remove(name string) {
	if removeIfPresent(p.host, name) {
		p.report.Stats.NodesRemoved++
	}
}

// reconcileLayer builds the source and output nodes of one layer at vertical
// offset y and returns the offset for the next layer.
func (p *pass) reconcileLayer(l scene.Layer, y float64) float64 {
	src, created, err := GetOrCreate(p.host, SourceKey(l.Name), nodegraph.TypeRenderLayers, nodegraph.Vec2{X: sourceX, Y: y})
	if err != nil {
		p.warn(l.Name, "", err)
		return y
	}
	p.counted(created)
	src.Layer = l.Name
	src.Label = l.Name
	if err := p.host.SetOutputs(src.Name, l.Sockets()); err != nil {
		p.warn(l.Name, "", errors.Wrap(errors.ErrCodeInvalidGraph, err, "set sockets of %s", src.Name))
		return p.nextLayerY(y, src, nil)
	}

	buckets := aov.ClassifyLayer(l)
	spec := aov.Aggregate(buckets, p.opts.Flags)
	outs := p.reconcileOutputs(l, buckets, spec, y)
	for _, out := range outs {
		p.wire(l, src, out)
	}
	return p.nextLayerY(y, src, outs)
}

// nextLayerY returns the offset below the layer's source and output nodes.
func (p *pass) nextLayerY(y float64, src *nodegraph.Node, outs []*nodegraph.Node) float64 {
	b := p.engine.Bounds(p.footprints(append([]*nodegraph.Node{src}, outs...)))
	return y - b.Height() - layerGap
}

// wire links every slot of out from src. The normalized socket name is tried
// first, then the raw slot name.
func (p *pass) wire(l scene.Layer, src, out *nodegraph.Node) {
	for _, slot := range slices.Clone(out.Inputs) {
		socket := sourceSocket(l, slot)
		err := EnsureEdge(p.host, src.Name, socket, out.Name, slot)
		if err != nil && socket != slot {
			err = EnsureEdge(p.host, src.Name, slot, out.Name, slot)
		}
		if err != nil {
			p.warn(l.Name, slot, err)
		}
	}
}

// sourceSocket maps an output slot to the source socket that feeds it.
func sourceSocket(l scene.Layer, slot string) string {
	if l.HasLightGroup(slot) {
		return scene.LightGroupSocket(slot)
	}
	if slot == aov.SlotRGB {
		return nodegraph.SocketImage
	}
	return slot
}

func (p *pass) footprint(n *nodegraph.Node) layout.Footprint {
	return layout.Footprint{
		X:      n.Location.X,
		Y:      n.Location.Y,
		Width:  n.Width,
		Height: p.host.Dimensions(n).Y,
	}
}

func (p *pass) footprints(ns []*nodegraph.Node) []layout.Footprint {
	fs := make([]layout.Footprint, len(ns))
	for i, n := range ns {
		fs[i] = p.footprint(n)
	}
	return fs
}

// linkSet returns every link in h, keyed by value.
func linkSet(h Host) map[nodegraph.Link]bool {
	set := make(map[nodegraph.Link]bool)
	for _, n := range h.Nodes() {
		for _, l := range h.LinksTo(n.Name) {
			set[l] = true
		}
	}
	return set
}

// countNew counts the links of h that are not in before. Links that a pass
// replaces and then restores are not counted.
func countNew(h Host, before map[nodegraph.Link]bool) int {
	n := 0
	for l := range linkSet(h) {
		if !before[l] {
			n++
		}
	}
	return n
}
