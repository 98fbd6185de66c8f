package compositor

import (
	"fmt"
	"time"

	"github.com/matzehuels/flashaov/pkg/errors"
)

// Warning is a non-fatal failure recorded during a pass.
type Warning struct {
	Layer   string      `json:"layer,omitempty"`
	Slot    string      `json:"slot,omitempty"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`

	Err error `json:"-"`
}

func (w Warning) String() string {
	switch {
	case w.Layer != "" && w.Slot != "":
		return fmt.Sprintf("%s/%s: %s", w.Layer, w.Slot, w.Message)
	case w.Layer != "":
		return fmt.Sprintf("%s: %s", w.Layer, w.Message)
	}
	return w.Message
}

// Stats counts what a pass changed.
type Stats struct {
	NodesCreated    int `json:"nodes_created"`
	NodesReused     int `json:"nodes_reused"`
	NodesRemoved    int `json:"nodes_removed"`
	SlotsAdded      int `json:"slots_added"`
	SlotsPruned     int `json:"slots_pruned"`
	LinksMade       int `json:"links_made"` // links present after the pass but not before
	DenoiseInserted int `json:"denoise_inserted"`
	DenoiseRemoved  int `json:"denoise_removed"`
}

// Report summarizes one reconcile pass.
type Report struct {
	PassID   string        `json:"pass_id"`
	Layers   []string      `json:"layers"`
	Warnings []Warning     `json:"warnings,omitempty"`
	Stats    Stats         `json:"stats"`
	Duration time.Duration `json:"duration_ns"`
}

// HasWarnings reports whether the pass recorded any warning.
func (r *Report) HasWarnings() bool { return len(r.Warnings) > 0 }

func newWarning(layer, slot string, err error) Warning {
	return Warning{
		Layer:   layer,
		Slot:    slot,
		Code:    errors.GetCode(err),
		Message: err.Error(),
		Err:     err,
	}
}
