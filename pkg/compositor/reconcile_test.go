package compositor

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flashaov/pkg/aov"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/scene"
)

func passes(names ...string) []scene.Pass {
	out := make([]scene.Pass, len(names))
	for i, n := range names {
		out[i] = scene.Pass{Name: n, Enabled: true}
	}
	return out
}

func view1() scene.Layer {
	return scene.Layer{Name: "View1", Passes: passes("Image", "Alpha", "Depth", "DiffCol", "CryptoObject00")}
}

func mainLayer() scene.Layer {
	return scene.Layer{Name: "Main", Passes: passes("Image", DenoisingNormal, DenoisingAlbedo)}
}

func richLayer(name string) scene.Layer {
	return scene.Layer{
		Name:        name,
		Passes:      passes("Image", "Alpha", "DiffCol", "Depth", "Mist", "IndexOB", "CryptoObject00", DenoisingNormal, DenoisingAlbedo),
		AOVs:        []string{"Wetness"},
		LightGroups: []string{"Key", "Rim"},
	}
}

func reconcile(t *testing.T, g *nodegraph.Graph, sc *scene.Scene, opts Options) *Report {
	t.Helper()
	r := NewReconciler(GraphContext{Host: g, Provider: sc}, opts, log.New(io.Discard))
	report, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("graph invalid after pass: %v", err)
	}
	return report
}

// snapshot renders the structural state of g as sorted lines.
func snapshot(g *nodegraph.Graph) []string {
	var lines []string
	for _, n := range g.Nodes() {
		lines = append(lines, fmt.Sprintf("node %s %s in=%v out=%v at=%v hidden=%v",
			n.Name, n.Type, n.Inputs, n.Outputs, n.Location, n.Hidden))
	}
	for _, l := range g.Links() {
		lines = append(lines, fmt.Sprintf("link %s.%s -> %s.%s", l.FromNode, l.FromSocket, l.ToNode, l.ToSocket))
	}
	sort.Strings(lines)
	return lines
}

func nodeNames(g *nodegraph.Graph) []string {
	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return names
}

func noDenoise(f aov.Flags) Options { return Options{Flags: f} }

func TestReconcileView1(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{view1()}}
	report := reconcile(t, g, sc, noDenoise(aov.Flags{SeparateData: true, SeparateCryptomatte: true}))

	if report.HasWarnings() {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}
	if report.Stats.LinksMade != 4 {
		t.Errorf("LinksMade = %d, want 4", report.Stats.LinksMade)
	}
	wantNodes := []string{
		"View1_RLayers_Flash",
		"View1_cryptomatte_OutputFile_Flash",
		"View1_data_OutputFile_Flash",
		"View1_rgb_OutputFile_Flash",
	}
	if got := nodeNames(g); !reflect.DeepEqual(got, wantNodes) {
		t.Fatalf("nodes = %v, want %v", got, wantNodes)
	}

	slots := map[string][]string{
		"View1_rgb_OutputFile_Flash":         {"rgb", "DiffCol"},
		"View1_data_OutputFile_Flash":        {"Depth"},
		"View1_cryptomatte_OutputFile_Flash": {"CryptoObject00"},
	}
	for name, want := range slots {
		n, _ := g.Node(name)
		if !reflect.DeepEqual(n.Inputs, want) {
			t.Errorf("%s slots = %v, want %v", name, n.Inputs, want)
		}
	}

	src := "View1_RLayers_Flash"
	wantLinks := []nodegraph.Link{
		{FromNode: src, FromSocket: "Image", ToNode: "View1_rgb_OutputFile_Flash", ToSocket: "rgb"},
		{FromNode: src, FromSocket: "DiffCol", ToNode: "View1_rgb_OutputFile_Flash", ToSocket: "DiffCol"},
		{FromNode: src, FromSocket: "Depth", ToNode: "View1_data_OutputFile_Flash", ToSocket: "Depth"},
		{FromNode: src, FromSocket: "CryptoObject00", ToNode: "View1_cryptomatte_OutputFile_Flash", ToSocket: "CryptoObject00"},
	}
	for _, want := range wantLinks {
		if got, ok := g.LinkInto(want.ToNode, want.ToSocket); !ok || got != want {
			t.Errorf("LinkInto(%s, %s) = %+v, want %+v", want.ToNode, want.ToSocket, got, want)
		}
	}
	if g.LinkCount() != len(wantLinks) {
		t.Errorf("LinkCount = %d, want %d", g.LinkCount(), len(wantLinks))
	}

	rgb, _ := g.Node("View1_rgb_OutputFile_Flash")
	data, _ := g.Node("View1_data_OutputFile_Flash")
	if rgb.Color != ColorBeauty || data.Color != ColorData || !rgb.UseColor {
		t.Errorf("colors = %v / %v", rgb.Color, data.Color)
	}
	if rgb.Label != "View1 rgb" || rgb.Width != 500 {
		t.Errorf("rgb label/width = %q/%v", rgb.Label, rgb.Width)
	}
	s, _ := g.Node(src)
	if s.Layer != "View1" || s.Location != (nodegraph.Vec2{X: -400, Y: 0}) {
		t.Errorf("source = %+v", s)
	}
}

func TestReconcileView1WithDenoiseRollsBack(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{view1()}}
	opts := DefaultOptions()
	opts.Flags.SeparateData = true
	report := reconcile(t, g, sc, opts)

	// No denoising guides on the layer: every insertion rolls back.
	if g.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4: %v", g.NodeCount(), nodeNames(g))
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 (rgb, DiffCol)", report.Warnings)
	}
	for _, w := range report.Warnings {
		if w.Code != errors.ErrCodeInsertFailed || w.Layer != "View1" {
			t.Errorf("warning = %+v", w)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	flagSets := []aov.Flags{
		{},
		{SeparateCryptomatte: true},
		{SeparateData: true, SeparateCryptomatte: true, SeparateShaderAOV: true, SeparateLightGroup: true},
		{SeparateLightGroup: true},
	}
	for _, f := range flagSets {
		for _, denoise := range []bool{false, true} {
			t.Run(fmt.Sprintf("%+v/denoise=%v", f, denoise), func(t *testing.T) {
				g := nodegraph.New()
				sc := &scene.Scene{Layers: []scene.Layer{richLayer("A"), view1()}}
				opts := Options{Flags: f, Denoise: denoise}

				reconcile(t, g, sc, opts)
				first := snapshot(g)
				second := reconcile(t, g, sc, opts)

				if got := snapshot(g); !reflect.DeepEqual(got, first) {
					t.Errorf("second pass changed graph:\nfirst:  %v\nsecond: %v", first, got)
				}
				if second.Stats.NodesCreated != 0 || second.Stats.NodesRemoved != 0 ||
					second.Stats.DenoiseInserted != 0 || second.Stats.LinksMade != 0 {
					t.Errorf("second pass stats = %+v", second.Stats)
				}
			})
		}
	}
}

func TestReconcileSlotCoverage(t *testing.T) {
	layer := richLayer("A")
	for mask := 0; mask < 16; mask++ {
		f := aov.Flags{
			SeparateData:        mask&1 != 0,
			SeparateCryptomatte: mask&2 != 0,
			SeparateShaderAOV:   mask&4 != 0,
			SeparateLightGroup:  mask&8 != 0,
		}
		g := nodegraph.New()
		reconcile(t, g, &scene.Scene{Layers: []scene.Layer{layer}}, noDenoise(f))

		spec := aov.Aggregate(aov.ClassifyLayer(layer), f)
		for _, c := range aov.Categories {
			n, ok := g.Node(OutputKey("A", c).Name())
			if ok != spec.Has(c) {
				t.Errorf("mask %04b: %s node present=%v, spec has=%v", mask, c, ok, spec.Has(c))
				continue
			}
			for _, slot := range spec.Slots(c) {
				if !n.HasInput(slot) {
					t.Errorf("mask %04b: %s missing slot %q", mask, c, slot)
				}
				if _, linked := g.LinkInto(n.Name, slot); !linked {
					t.Errorf("mask %04b: %s slot %q not wired", mask, c, slot)
				}
			}
		}
	}
}

func TestReconcileLightGroupWiring(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{richLayer("A")}}
	reconcile(t, g, sc, noDenoise(aov.Flags{SeparateLightGroup: true}))

	out, ok := g.Node(OutputKey("A", aov.LightGroup).Name())
	if !ok {
		t.Fatal("lightgroup output missing")
	}
	if !reflect.DeepEqual(out.Inputs, []string{"Key", "Rim"}) || out.Color != ColorBeauty {
		t.Errorf("lightgroup node = %+v", out)
	}
	l, _ := g.LinkInto(out.Name, "Key")
	if l.FromSocket != "Combined_Key" {
		t.Errorf("Key fed from %q, want Combined_Key", l.FromSocket)
	}
}

func TestDenoiseRoundTrip(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{mainLayer()}}
	src := SourceKey("Main").Name()
	out := OutputKey("Main", aov.RGB).Name()
	dn := DenoiseKey("Main", "Image").Name()

	report := reconcile(t, g, sc, Options{Denoise: true})
	if report.Stats.DenoiseInserted != 1 {
		t.Errorf("DenoiseInserted = %d, want 1", report.Stats.DenoiseInserted)
	}
	node, ok := g.Node(dn)
	if !ok || !node.Hidden {
		t.Fatalf("denoise node = %+v, %v", node, ok)
	}
	if node.Location != (nodegraph.Vec2{X: 300, Y: 0}) {
		t.Errorf("denoise location = %v", node.Location)
	}
	if l, _ := g.LinkInto(out, "rgb"); l.FromNode != dn {
		t.Errorf("rgb fed from %s, want %s", l.FromNode, dn)
	}
	for socket, from := range map[string]string{"Image": "Image", "Normal": DenoisingNormal, "Albedo": DenoisingAlbedo} {
		if l, ok := g.LinkInto(dn, socket); !ok || l.FromNode != src || l.FromSocket != from {
			t.Errorf("denoise %s = %+v, %v", socket, l, ok)
		}
	}

	report = reconcile(t, g, sc, Options{Denoise: false})
	if _, ok := g.Node(dn); ok {
		t.Error("denoise node survived disable")
	}
	if report.Stats.DenoiseRemoved != 1 {
		t.Errorf("DenoiseRemoved = %d, want 1", report.Stats.DenoiseRemoved)
	}
	want := nodegraph.Link{FromNode: src, FromSocket: "Image", ToNode: out, ToSocket: "rgb"}
	if l, _ := g.LinkInto(out, "rgb"); l != want {
		t.Errorf("rgb link = %+v, want %+v", l, want)
	}
}

func TestDenoiseStacksPerOutputNode(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{richLayer("A")}}
	reconcile(t, g, sc, Options{Denoise: true, Flags: aov.Flags{SeparateLightGroup: true}})

	rgb, _ := g.Node(OutputKey("A", aov.RGB).Name())
	lg, _ := g.Node(OutputKey("A", aov.LightGroup).Name())
	tests := []struct {
		socket string
		want   nodegraph.Vec2
	}{
		{"Image", nodegraph.Vec2{X: rgb.Location.X - 500, Y: rgb.Location.Y}},
		{"DiffCol", nodegraph.Vec2{X: rgb.Location.X - 500, Y: rgb.Location.Y - 33}},
		{"Combined_Key", nodegraph.Vec2{X: lg.Location.X - 500, Y: lg.Location.Y}},
		{"Combined_Rim", nodegraph.Vec2{X: lg.Location.X - 500, Y: lg.Location.Y - 33}},
	}
	for _, tt := range tests {
		n, ok := g.Node(DenoiseKey("A", tt.socket).Name())
		if !ok {
			t.Errorf("no denoise node for %s", tt.socket)
			continue
		}
		if n.Location != tt.want {
			t.Errorf("%s at %v, want %v", tt.socket, n.Location, tt.want)
		}
	}
}

func TestDenoiseDisabledKeepsUserWiredNodes(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{mainLayer()}}
	reconcile(t, g, sc, Options{Denoise: true})

	dn := DenoiseKey("Main", "Image").Name()
	viewer, _ := g.NewNode(nodegraph.TypeComposite, "Viewer", nodegraph.Vec2{X: 2000, Y: 500})
	if err := g.Connect(nodegraph.Link{FromNode: dn, FromSocket: "Image", ToNode: viewer.Name, ToSocket: "Image"}); err != nil {
		t.Fatal(err)
	}

	reconcile(t, g, sc, Options{Denoise: false})
	if _, ok := g.Node(dn); !ok {
		t.Error("denoise node with a downstream link was removed")
	}
}

func TestUnlinkedUserDenoiseSurvives(t *testing.T) {
	g := nodegraph.New()
	if _, err := g.NewNode(nodegraph.TypeDenoise, "MyDenoise", nodegraph.Vec2{}); err != nil {
		t.Fatal(err)
	}
	sc := &scene.Scene{Layers: []scene.Layer{mainLayer()}}
	report := reconcile(t, g, sc, Options{Denoise: false})

	if _, ok := g.Node("MyDenoise"); !ok {
		t.Error("user denoise node was swept")
	}
	if report.Stats.DenoiseRemoved != 0 {
		t.Errorf("DenoiseRemoved = %d, want 0", report.Stats.DenoiseRemoved)
	}
}

func TestStaleLayerCleanup(t *testing.T) {
	g := nodegraph.New()
	reconcile(t, g, &scene.Scene{Layers: []scene.Layer{richLayer("Old"), view1()}}, Options{Denoise: true})
	_, _ = g.AddNode(nodegraph.Node{Name: "Old grade", Location: nodegraph.Vec2{Y: 500}})
	_, _ = g.AddNode(nodegraph.Node{Name: "Keep me", Location: nodegraph.Vec2{Y: 500}})

	before := g.NodeCount()
	report := reconcile(t, g, &scene.Scene{Layers: []scene.Layer{view1()}}, Options{Denoise: true})

	for _, name := range nodeNames(g) {
		if strings.Contains(name, "Old") {
			t.Errorf("node %q survived stale cleanup", name)
		}
	}
	for _, name := range []string{"Keep me", "View1_RLayers_Flash", "View1_rgb_OutputFile_Flash"} {
		if _, ok := g.Node(name); !ok {
			t.Errorf("node %q removed", name)
		}
	}
	if report.Stats.NodesRemoved == 0 || g.NodeCount() >= before {
		t.Errorf("nothing removed: stats=%+v", report.Stats)
	}
}

func TestStaleCleanupSparesLiveLayerSharingPrefix(t *testing.T) {
	g := nodegraph.New()
	reconcile(t, g, &scene.Scene{Layers: []scene.Layer{view1(), {Name: "View1_bg", Passes: passes("Image")}}}, Options{})

	reconcile(t, g, &scene.Scene{Layers: []scene.Layer{{Name: "View1_bg", Passes: passes("Image")}}}, Options{})
	want := []string{"View1_bg_RLayers_Flash", "View1_bg_rgb_OutputFile_Flash"}
	if got := nodeNames(g); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestReboundSourceIsRecreated(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{view1()}}
	reconcile(t, g, sc, Options{})

	src, _ := g.Node("View1_RLayers_Flash")
	src.Layer = "Elsewhere"
	report := reconcile(t, g, sc, Options{})

	src, ok := g.Node("View1_RLayers_Flash")
	if !ok || src.Layer != "View1" {
		t.Fatalf("source = %+v, %v", src, ok)
	}
	if report.Stats.NodesCreated != 1 {
		t.Errorf("NodesCreated = %d, want 1", report.Stats.NodesCreated)
	}
	if _, ok := g.LinkInto("View1_rgb_OutputFile_Flash", "rgb"); !ok {
		t.Error("rgb not rewired to recreated source")
	}
}

func TestDefaultNodesRemoved(t *testing.T) {
	g := nodegraph.New()
	_, _ = g.NewNode(nodegraph.TypeRenderLayers, "Render Layers", nodegraph.Vec2{})
	_, _ = g.NewNode(nodegraph.TypeComposite, "Composite", nodegraph.Vec2{X: 300})
	_ = g.Connect(nodegraph.Link{FromNode: "Render Layers", FromSocket: "Image", ToNode: "Composite", ToSocket: "Image"})

	reconcile(t, g, &scene.Scene{Layers: []scene.Layer{view1()}}, Options{})
	for _, name := range []string{"Render Layers", "Composite"} {
		if _, ok := g.Node(name); ok {
			t.Errorf("default node %q kept", name)
		}
	}
	if _, ok := g.Node("View1_RLayers_Flash"); !ok {
		t.Error("pass did not continue after removing default nodes")
	}
}

func TestUserNodesShiftedAboveManaged(t *testing.T) {
	g := nodegraph.New()
	_, _ = g.NewNode(nodegraph.TypeRenderLayers, "Render Layers", nodegraph.Vec2{})
	_, _ = g.NewNode(nodegraph.TypeComposite, "Composite", nodegraph.Vec2{X: 300})
	viewer, _ := g.NewNode(nodegraph.TypeGeneric, "Viewer", nodegraph.Vec2{X: 600})

	sc := &scene.Scene{Layers: []scene.Layer{view1()}}
	reconcile(t, g, sc, Options{})

	// Tallest user node: 36 + 2*22 + 12 = 92, plus padding 20.
	if viewer.Location.Y != 112+200 {
		t.Errorf("viewer y = %v, want 312", viewer.Location.Y)
	}
	reconcile(t, g, sc, Options{})
	if viewer.Location.Y != 312 {
		t.Errorf("viewer moved again: y = %v", viewer.Location.Y)
	}
}

func TestLayersStackVertically(t *testing.T) {
	for _, scale := range []float64{0, 1, 2} {
		t.Run(fmt.Sprint(scale), func(t *testing.T) {
			g := nodegraph.New()
			g.SetScaleFactor(scale)
			second := view1()
			second.Name = "View2"
			sc := &scene.Scene{Layers: []scene.Layer{view1(), second}}
			reconcile(t, g, sc, noDenoise(aov.Flags{SeparateData: true, SeparateCryptomatte: true}))

			// rgb (2 slots) 112, data and cryptomatte (1 slot) 90 each, 20 gaps:
			// outputs at 0, -132, -242; bottom -332; next layer 0 - 332 - 500.
			wantY := map[string]float64{
				"View1_rgb_OutputFile_Flash":         0,
				"View1_data_OutputFile_Flash":        -132,
				"View1_cryptomatte_OutputFile_Flash": -242,
				"View2_RLayers_Flash":                -832,
				"View2_rgb_OutputFile_Flash":         -832,
			}
			for name, y := range wantY {
				n, ok := g.Node(name)
				if !ok || n.Location.Y != y {
					t.Errorf("%s y = %v, want %v", name, n.Location.Y, y)
				}
			}
		})
	}
}

func TestNextLayerClearsSource(t *testing.T) {
	tests := []struct {
		name   string
		passes []string
		wantY  float64
	}{
		// One source socket: 70 + 20 padding + 500 gap, no outputs.
		{"no outputs", []string{"Freestyle"}, -590},
		// Five source sockets (178 + 20) outstrip the two-slot rgb output (112).
		{"tall source", []string{"Image", "Alpha", "DiffCol", "Freestyle", "Custom Pass"}, -678},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := nodegraph.New()
			sc := &scene.Scene{Layers: []scene.Layer{
				{Name: "L1", Passes: passes(tt.passes...)},
				{Name: "L2", Passes: passes("Image")},
			}}
			reconcile(t, g, sc, noDenoise(aov.Flags{}))

			first, _ := g.Node(SourceKey("L1").Name())
			next, ok := g.Node(SourceKey("L2").Name())
			if !ok {
				t.Fatalf("L2 source missing: %v", nodeNames(g))
			}
			if next.Location.Y != tt.wantY {
				t.Errorf("L2 source y = %v, want %v", next.Location.Y, tt.wantY)
			}
			if bottom := first.Location.Y - g.Dimensions(first).Y - 20; next.Location.Y >= bottom {
				t.Errorf("L2 source at %v overlaps L1 source ending at %v", next.Location.Y, bottom)
			}
		})
	}
}

func TestDisabledCategoryCleanup(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{view1()}}
	reconcile(t, g, sc, noDenoise(aov.Flags{SeparateData: true, SeparateCryptomatte: true}))

	report := reconcile(t, g, sc, noDenoise(aov.Flags{SeparateCryptomatte: true}))
	if _, ok := g.Node("View1_data_OutputFile_Flash"); ok {
		t.Error("data output kept after merge")
	}
	rgb, _ := g.Node("View1_rgb_OutputFile_Flash")
	if !reflect.DeepEqual(rgb.Inputs, []string{"rgb", "DiffCol", "Depth"}) {
		t.Errorf("rgb slots = %v", rgb.Inputs)
	}
	if report.Stats.NodesRemoved != 1 || report.Stats.SlotsAdded != 1 {
		t.Errorf("stats = %+v", report.Stats)
	}
}

func TestEmptyRGBOutputRemoved(t *testing.T) {
	g := nodegraph.New()
	layer := scene.Layer{Name: "Ids", Passes: passes("Image", "CryptoObject00")}
	sc := &scene.Scene{Layers: []scene.Layer{layer}}
	reconcile(t, g, sc, Options{Flags: aov.Flags{SeparateCryptomatte: true}})

	sc.Layers[0].Passes[0].Enabled = false
	reconcile(t, g, sc, Options{Flags: aov.Flags{SeparateCryptomatte: true}})
	if _, ok := g.Node("Ids_rgb_OutputFile_Flash"); ok {
		t.Error("empty rgb output kept")
	}
	if _, ok := g.Node("Ids_cryptomatte_OutputFile_Flash"); !ok {
		t.Error("cryptomatte output removed")
	}
}

func TestPruneSlots(t *testing.T) {
	for _, prune := range []bool{false, true} {
		t.Run(fmt.Sprintf("prune=%v", prune), func(t *testing.T) {
			g := nodegraph.New()
			sc := &scene.Scene{Layers: []scene.Layer{view1()}}
			opts := Options{Flags: aov.Flags{SeparateData: true, SeparateCryptomatte: true}, PruneSlots: prune}
			reconcile(t, g, sc, opts)

			sc.Layers[0].Passes[3].Enabled = false // DiffCol
			report := reconcile(t, g, sc, opts)

			rgb, _ := g.Node("View1_rgb_OutputFile_Flash")
			if got := rgb.HasInput("DiffCol"); got == prune {
				t.Errorf("HasInput(DiffCol) = %v with prune=%v", got, prune)
			}
			if prune {
				if report.HasWarnings() || report.Stats.SlotsPruned != 1 {
					t.Errorf("report = %+v", report)
				}
				return
			}
			if len(report.Warnings) != 1 || report.Warnings[0].Code != errors.ErrCodeSocketNotFound || report.Warnings[0].Slot != "DiffCol" {
				t.Errorf("warnings = %+v", report.Warnings)
			}
		})
	}
}

func TestReconcileMissingCollaborators(t *testing.T) {
	_, err := NewReconciler(GraphContext{Provider: &scene.Scene{}}, Options{}, nil).Reconcile(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil host: err = %v", err)
	}
	_, err = NewReconciler(GraphContext{Host: nodegraph.New()}, Options{}, nil).Reconcile(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil provider: err = %v", err)
	}

	g := nodegraph.New()
	reconcile(t, g, &scene.Scene{Layers: []scene.Layer{view1()}}, Options{})
	before := snapshot(g)
	report := reconcile(t, g, &scene.Scene{}, Options{})
	if len(report.Warnings) != 1 || report.Warnings[0].Code != errors.ErrCodeLayerNotFound {
		t.Errorf("warnings = %+v", report.Warnings)
	}
	if !reflect.DeepEqual(snapshot(g), before) {
		t.Error("empty provider modified the graph")
	}
}

func TestReconcileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := nodegraph.New()
	r := NewReconciler(GraphContext{Host: g, Provider: &scene.Scene{Layers: []scene.Layer{view1()}}}, Options{}, log.New(io.Discard))
	report, err := r.Reconcile(ctx)
	if err == nil || report == nil {
		t.Fatalf("Reconcile() = %v, %v", report, err)
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}

func TestManagedOutputs(t *testing.T) {
	g := nodegraph.New()
	sc := &scene.Scene{Layers: []scene.Layer{view1()}}
	reconcile(t, g, sc, noDenoise(aov.Flags{SeparateData: true, SeparateCryptomatte: true}))
	_, _ = g.NewNode(nodegraph.TypeOutputFile, "Ghost_rgb_OutputFile_Flash", nodegraph.Vec2{})
	_, _ = g.NewNode(nodegraph.TypeOutputFile, "View1_bogus_OutputFile_Flash", nodegraph.Vec2{})
	_, _ = g.NewNode(nodegraph.TypeGeneric, "View1_lightgroup_OutputFile_Flash", nodegraph.Vec2{})

	got := ManagedOutputs(g, sc)
	if len(got) != 1 {
		t.Fatalf("layers = %v", got)
	}
	var cats []aov.Category
	for c := range got["View1"] {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	if !reflect.DeepEqual(cats, []aov.Category{aov.RGB, aov.Data, aov.Cryptomatte}) {
		t.Errorf("categories = %v", cats)
	}
}
