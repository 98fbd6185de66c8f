package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/internal/config"
	"github.com/matzehuels/flashaov/pkg/compositor"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/graphio"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/scene"
	"github.com/matzehuels/flashaov/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "flashaov"

	// stdio selects stdin or stdout for file flags.
	stdio = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	in         io.Reader
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), in: os.Stdin}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Settings
// =============================================================================

// passFlags are the per-invocation overrides of the project file.
type passFlags struct {
	data, crypto, shader, light bool
	denoise, prune              bool
	storeURL                    string
	noStore                     bool
}

func (f *passFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.data, "data", false, "write data passes to their own file")
	fl.BoolVar(&f.crypto, "cryptomatte", true, "write cryptomatte passes to their own file")
	fl.BoolVar(&f.shader, "shader-aov", false, "write shader AOVs to their own file")
	fl.BoolVar(&f.light, "light-group", false, "write light groups to their own file")
	fl.BoolVar(&f.denoise, "denoise", true, "insert denoise nodes on beauty and light-group slots")
	fl.BoolVar(&f.prune, "prune", false, "remove output slots the layer no longer produces")
	fl.StringVar(&f.storeURL, "store", "", "snapshot store: directory, file://dir, redis:// (overrides config)")
	fl.BoolVar(&f.noStore, "no-store", false, "do not read or write snapshots")
}

// settings loads the project file and applies flags the user set.
func (c *CLI) settings(cmd *cobra.Command, f *passFlags) (config.Config, error) {
	cfg, err := config.Load(config.Path(c.configPath))
	if err != nil {
		return cfg, err
	}
	if f == nil {
		return cfg, nil
	}
	fl := cmd.Flags()
	set := func(name string, dst *bool, v bool) {
		if fl.Changed(name) {
			*dst = v
		}
	}
	set("data", &cfg.Separate.SeparateData, f.data)
	set("cryptomatte", &cfg.Separate.SeparateCryptomatte, f.crypto)
	set("shader-aov", &cfg.Separate.SeparateShaderAOV, f.shader)
	set("light-group", &cfg.Separate.SeparateLightGroup, f.light)
	set("denoise", &cfg.Denoise.Enabled, f.denoise)
	set("prune", &cfg.Slots.Prune, f.prune)
	if fl.Changed("store") {
		cfg.Store.URL = f.storeURL
	}
	if f.noStore {
		cfg.Store.URL = ""
	}
	return cfg, cfg.Validate()
}

// openStore opens the configured snapshot store and its keyer.
func openStore(cfg config.Config) (store.Store, store.Keyer, error) {
	st, err := store.Open(cfg.Store.URL)
	if err != nil {
		return nil, nil, err
	}
	keyer := store.NewDefaultKeyer()
	if cfg.Store.Scope != "" {
		keyer = store.NewScopedKeyer(keyer, cfg.Store.Scope+":")
	}
	return st, keyer, nil
}

// =============================================================================
// Graph I/O
// =============================================================================

// loadScene reads the scene file named by path.
func loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--scene is required")
	}
	return scene.LoadFile(path)
}

// loadGraph reads the graph from path, or from stdin for "-". With no path
// the scene's stored snapshot is used, falling back to an empty graph. The
// returned string describes where the graph came from.
func (c *CLI) loadGraph(ctx context.Context, path string, st store.Store, key string) (*nodegraph.Graph, string, error) {
	switch path {
	case stdio:
		g, err := graphio.Read(c.in)
		return g, "stdin", err
	case "":
		g, found, err := store.LoadGraph(ctx, st, key)
		if err != nil {
			return nil, "", err
		}
		if found {
			return g, st.Backend() + " store", nil
		}
		return nodegraph.New(), "empty graph", nil
	default:
		g, err := graphio.ReadFile(path)
		return g, path, err
	}
}

// writeGraph writes g to path, or to w for "-".
func writeGraph(g *nodegraph.Graph, path string, w io.Writer) error {
	if path == stdio {
		return graphio.Write(g, w)
	}
	return graphio.WriteFile(g, path)
}

// reconcileGraph runs one pass over g using cfg's options.
func (c *CLI) reconcileGraph(ctx context.Context, g *nodegraph.Graph, sc *scene.Scene, cfg config.Config) (*compositor.Report, error) {
	rec := compositor.NewReconciler(compositor.GraphContext{Host: g, Provider: sc}, cfg.Options(), loggerFromContext(ctx))
	return rec.Reconcile(ctx)
}
