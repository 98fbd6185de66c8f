package compositor

import (
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
)

// GetOrCreate returns the node for key, creating it when absent. An existing
// node of the same type is reused and moved to pos. A same-named node of a
// different type is replaced. The bool result reports whether the node was
// created by this call.
func GetOrCreate(h Host, key Key, t nodegraph.NodeType, pos nodegraph.Vec2) (*nodegraph.Node, bool, error) {
	name := key.Name()
	if n, ok := h.Node(name); ok {
		if n.Type == t {
			n.Location = pos
			return n, false, nil
		}
		if err := h.RemoveNode(name); err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInvalidGraph, err, "replace %s", name)
		}
	}
	n, err := h.NewNode(t, name, pos)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidGraph, err, "create %s", name)
	}
	return n, true, nil
}

// EnsureEdge links from.fromSocket to to.toSocket. Missing nodes or sockets
// return a coded error and leave the host untouched. An identical existing
// link is a no-op; a different link into the same input is replaced.
func EnsureEdge(h Host, from, fromSocket, to, toSocket string) error {
	l := nodegraph.Link{FromNode: from, FromSocket: fromSocket, ToNode: to, ToSocket: toSocket}
	if err := checkLink(h, l); err != nil {
		return err
	}
	if cur, ok := h.LinkInto(to, toSocket); ok && cur == l {
		return nil
	}
	if err := h.Connect(l); err != nil {
		return errors.Wrap(errors.ErrCodeLinkFailed, err, "link %s.%s -> %s.%s", from, fromSocket, to, toSocket)
	}
	return nil
}

// ExtraEdge is an additional link from an insertion's upstream node into the
// inserted node.
type ExtraEdge struct {
	FromSocket string
	ToSocket   string
}

// InsertRequest describes a node to place on the link into To.ToSocket.
type InsertRequest struct {
	From, FromSocket string
	To, ToSocket     string

	Key      Key
	Type     nodegraph.NodeType
	Location nodegraph.Vec2
	Hidden   bool

	// Extra links from From into the new node. All are required.
	Extra []ExtraEdge
}

// InsertBetween places a node between From.FromSocket and To.ToSocket. The
// new node's Image input is fed from upstream and its Image output feeds the
// downstream slot. All links are committed together; if any cannot be made,
// a node created by this call is deleted, a reused one gets its position and
// visibility back, and the original wiring is left as it was.
func InsertBetween(h Host, req InsertRequest) (*nodegraph.Node, error) {
	var prevLoc nodegraph.Vec2
	var prevHidden bool
	if n, ok := h.Node(req.Key.Name()); ok {
		prevLoc, prevHidden = n.Location, n.Hidden
	}
	mid, created, err := GetOrCreate(h, req.Key, req.Type, req.Location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInsertFailed, err, "insert between %s and %s", req.From, req.To)
	}
	mid.Hidden = req.Hidden

	b := NewEdgeBatch(h).
		Add(req.From, req.FromSocket, mid.Name, nodegraph.SocketImage).
		Add(mid.Name, nodegraph.SocketImage, req.To, req.ToSocket)
	for _, e := range req.Extra {
		b.Add(req.From, e.FromSocket, mid.Name, e.ToSocket)
	}

	if err := b.Commit(); err != nil {
		if created {
			_ = h.RemoveNode(mid.Name)
		} else {
			mid.Location, mid.Hidden = prevLoc, prevHidden
		}
		return nil, errors.Wrap(errors.ErrCodeInsertFailed, err, "insert %s", mid.Name)
	}
	return mid, nil
}

// RemoveBetween deletes a node and links its first upstream socket directly
// to its first downstream socket. A node without inbound or outbound links
// is deleted without reconnecting. A missing node is a no-op.
//
// The node is removed even when reconnecting fails; the error is returned.
func RemoveBetween(h Host, name string) error {
	if _, ok := h.Node(name); !ok {
		return nil
	}
	in := h.LinksTo(name)
	out := h.LinksFrom(name)
	if err := h.RemoveNode(name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "remove %s", name)
	}
	if len(in) == 0 || len(out) == 0 {
		return nil
	}
	return EnsureEdge(h, in[0].FromNode, in[0].FromSocket, out[0].ToNode, out[0].ToSocket)
}

// removeIfPresent deletes name and reports whether it existed. Deleting a
// node a prior step already removed is not an error.
func removeIfPresent(h Host, name string) bool {
	if _, ok := h.Node(name); !ok {
		return false
	}
	return h.RemoveNode(name) == nil
}
