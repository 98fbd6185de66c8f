package store

import (
	"context"
	"time"

	"github.com/matzehuels/flashaov/pkg/graphio"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/observability"
)

// LoadGraph reads and decodes a graph snapshot. A miss returns (nil, false, nil).
func LoadGraph(ctx context.Context, s Store, key string) (*nodegraph.Graph, bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	observability.Store().OnLoad(ctx, s.Backend(), key, found)
	if !found {
		return nil, false, nil
	}
	g, err := graphio.Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// SaveGraph encodes and stores a graph snapshot.
func SaveGraph(ctx context.Context, s Store, key string, g *nodegraph.Graph, ttl time.Duration) error {
	data, err := graphio.Marshal(g)
	if err != nil {
		return err
	}
	return Save(ctx, s, key, data, ttl)
}

// Save stores raw bytes and reports the write to the store hooks.
func Save(ctx context.Context, s Store, key string, data []byte, ttl time.Duration) error {
	if err := s.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Store().OnSave(ctx, s.Backend(), key, len(data))
	return nil
}
