package compositor

import (
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// EdgeBatch stages links and applies them together. Validate checks every
// staged link against the host without mutating it; Commit applies all
// links or, when any fails, restores the links it displaced and returns the
// error.
//
//	b := compositor.NewEdgeBatch(host).
//	    Add(src, "Image", dn, "Image").
//	    Add(dn, "Image", out, "rgb")
//	if err := b.Commit(); err != nil {
//	    // graph unchanged
//	}
type EdgeBatch struct {
	host  Host
	edges []nodegraph.Link
}

// NewEdgeBatch returns an empty batch for h.
func NewEdgeBatch(h Host) *EdgeBatch {
	return &EdgeBatch{host: h}
}

// Add stages a link and returns the batch for chaining.
func (b *EdgeBatch) Add(from, fromSocket, to, toSocket string) *EdgeBatch {
	b.edges = append(b.edges, nodegraph.Link{FromNode: from, FromSocket: fromSocket, ToNode: to, ToSocket: toSocket})
	return b
}

// Validate checks that every staged link has existing endpoints and sockets
// and that no two staged links target the same input.
func (b *EdgeBatch) Validate() error {
	targets := make(map[[2]string]bool, len(b.edges))
	for _, l := range b.edges {
		if err := checkLink(b.host, l); err != nil {
			return err
		}
		key := [2]string{l.ToNode, l.ToSocket}
		if targets[key] {
			return errors.New(errors.ErrCodeLinkFailed, "input %s.%s staged twice", l.ToNode, l.ToSocket)
		}
		targets[key] = true
	}
	return nil
}

// Commit validates and applies the batch. On failure the host is left as it
// was before the call.
func (b *EdgeBatch) Commit() error {
	if err := b.Validate(); err != nil {
		return err
	}

	var applied []displaced
	for _, l := range b.edges {
		prev, had := b.host.LinkInto(l.ToNode, l.ToSocket)
		if err := b.host.Connect(l); err != nil {
			b.rollback(applied)
			return errors.Wrap(errors.ErrCodeLinkFailed, err, "link %s.%s -> %s.%s", l.FromNode, l.FromSocket, l.ToNode, l.ToSocket)
		}
		applied = append(applied, displaced{link: l, prev: prev, had: had})
	}
	return nil
}

// displaced records a committed link and the link it replaced, if any.
type displaced struct {
	link nodegraph.Link
	prev nodegraph.Link
	had  bool
}

func (b *EdgeBatch) rollback(applied []displaced) {
	for i := len(applied) - 1; i >= 0; i-- {
		b.host.Disconnect(applied[i].link)
		if applied[i].had {
			_ = b.host.Connect(applied[i].prev)
		}
	}
}

// checkLink resolves both endpoints and sockets of l.
func checkLink(h Host, l nodegraph.Link) error {
	from, ok := h.Node(l.FromNode)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", l.FromNode)
	}
	to, ok := h.Node(l.ToNode)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", l.ToNode)
	}
	if !from.HasOutput(l.FromSocket) {
		return errors.New(errors.ErrCodeSocketNotFound, "output %q not found on %s", l.FromSocket, l.FromNode)
	}
	if !to.HasInput(l.ToSocket) {
		return errors.New(errors.ErrCodeSocketNotFound, "input %q not found on %s", l.ToSocket, l.ToNode)
	}
	if l.FromNode == l.ToNode {
		return errors.New(errors.ErrCodeLinkFailed, "node %q linked to itself", l.FromNode)
	}
	return nil
}
