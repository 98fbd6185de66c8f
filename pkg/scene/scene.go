// Package scene describes the render layers a reconcile pass reads from.
//
// A [Scene] is the render layer provider: it enumerates layers in a stable
// order and exposes, per layer, its passes (with enabled state), its shader
// AOV names and its light-group names. Scenes are usually loaded from a TOML
// file exported by the host application:
//
//	name = "shot_010"
//
//	[[layers]]
//	name = "View1"
//	aovs = ["Wetness"]
//	light_groups = ["Key", "Rim"]
//
//	  [[layers.passes]]
//	  name = "Image"
//
//	  [[layers.passes]]
//	  name = "Mist"
//	  enabled = false
//
// A pass without an enabled key is enabled.
package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flashaov/pkg/errors"
)

// Pass is one named render pass produced by a layer.
type Pass struct {
	Name    string `toml:"name" json:"name"`
	Enabled bool   `toml:"enabled" json:"enabled"`
}

// rawPass is the serialized form of a Pass; a missing enabled key means true.
type rawPass struct {
	Name    string `toml:"name" json:"name"`
	Enabled *bool  `toml:"enabled" json:"enabled"`
}

func (r rawPass) pass() Pass {
	return Pass{Name: r.Name, Enabled: r.Enabled == nil || *r.Enabled}
}

// UnmarshalJSON decodes a pass, treating a missing "enabled" as true.
func (p *Pass) UnmarshalJSON(data []byte) error {
	var r rawPass
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = r.pass()
	return nil
}

// Layer is a render layer (view layer) and the passes it produces.
type Layer struct {
	Name        string   `toml:"name" json:"name"`
	Passes      []Pass   `toml:"passes" json:"passes"`
	AOVs        []string `toml:"aovs" json:"aovs,omitempty"`
	LightGroups []string `toml:"light_groups" json:"light_groups,omitempty"`
}

// HasLightGroup reports whether name is one of the layer's light groups.
func (l Layer) HasLightGroup(name string) bool {
	for _, lg := range l.LightGroups {
		if lg == name {
			return true
		}
	}
	return false
}

// Sockets returns the output socket names a source node bound to this layer
// exposes: enabled passes, then shader AOVs, then "Combined_"-prefixed light
// groups.
func (l Layer) Sockets() []string {
	out := make([]string, 0, len(l.Passes)+len(l.AOVs)+len(l.LightGroups))
	for _, p := range l.Passes {
		if p.Enabled && p.Name != "" {
			out = append(out, p.Name)
		}
	}
	out = append(out, l.AOVs...)
	for _, lg := range l.LightGroups {
		out = append(out, LightGroupSocket(lg))
	}
	return out
}

// LightGroupSocket returns the source socket name for a light group.
func LightGroupSocket(name string) string { return "Combined_" + name }

// Scene is an ordered set of layers.
type Scene struct {
	Name   string  `toml:"name" json:"name"`
	Layers []Layer `toml:"layers" json:"layers"`
}

// ViewLayers returns the layers in enumeration order.
func (s *Scene) ViewLayers() []Layer {
	if s == nil {
		return nil
	}
	return s.Layers
}

// Layer returns the layer with the given name.
func (s *Scene) Layer(name string) (Layer, bool) {
	for _, l := range s.ViewLayers() {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Validate checks layer names are present and unique.
func (s *Scene) Validate() error {
	seen := make(map[string]bool, len(s.Layers))
	for i, l := range s.Layers {
		if l.Name == "" {
			return errors.New(errors.ErrCodeInvalidScene, "layer %d has no name", i)
		}
		if err := errors.ValidateLayerName(l.Name); err != nil {
			return err
		}
		if seen[l.Name] {
			return errors.New(errors.ErrCodeInvalidScene, "duplicate layer %q", l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// LoadFile reads a scene from a TOML file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

type rawLayer struct {
	Name        string    `toml:"name"`
	Passes      []rawPass `toml:"passes"`
	AOVs        []string  `toml:"aovs"`
	LightGroups []string  `toml:"light_groups"`
}

type rawScene struct {
	Name   string     `toml:"name"`
	Layers []rawLayer `toml:"layers"`
}

func (rs rawScene) scene() Scene {
	s := Scene{Name: rs.Name, Layers: make([]Layer, 0, len(rs.Layers))}
	for _, rl := range rs.Layers {
		l := Layer{Name: rl.Name, AOVs: rl.AOVs, LightGroups: rl.LightGroups}
		for _, rp := range rl.Passes {
			l.Passes = append(l.Passes, rp.pass())
		}
		s.Layers = append(s.Layers, l)
	}
	return s
}

// Decode reads a TOML scene from r and validates it.
func Decode(r io.Reader) (*Scene, error) {
	var rs rawScene
	if _, err := toml.NewDecoder(r).Decode(&rs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	s := rs.scene()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
