package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/config"
	"github.com/ritzau/dag-ui/pkg/ids"
	"github.com/ritzau/dag-ui/pkg/logging"
	"github.com/ritzau/dag-ui/pkg/model"
	"github.com/ritzau/dag-ui/pkg/output"
	"github.com/ritzau/dag-ui/pkg/pubsub"
	"github.com/ritzau/dag-ui/pkg/seed"
	"github.com/ritzau/dag-ui/pkg/store"
	"github.com/ritzau/dag-ui/pkg/surface"
	"github.com/ritzau/dag-ui/pkg/watcher"
)

const (
	quietPeriod = 300 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	defaults := model.DefaultSurfaceOptions()

	f := pflag.NewFlagSet("dag-ui", pflag.ContinueOnError)
	f.String("seed", "", "JSON file with the initial graph (default: the two-node starter)")
	f.StringSlice("batch", nil, "JSON change batch to apply, in order (repeatable)")
	f.Int("add-nodes", 0, "Number of nodes to add after the batches")
	f.StringSlice("connect", nil, "Connection SRC:TGT to make after the batches (repeatable)")
	f.String("out", "dag-ui.html", "HTML file to render the graph to")
	f.String("title", "DAG UI", "Page title")
	f.String("color-mode", string(defaults.ColorMode), "Surface color mode: light or dark")
	f.Bool("fit-view", defaults.FitView, "Fit the diagram into the viewport")
	f.Float64("fit-view-padding", defaults.FitViewPadding, "Padding around the fitted diagram, as a fraction of its size")
	f.Bool("animated", defaults.DefaultEdgeOptions.Animated, "Draw new edges animated")
	f.Bool("hide-attribution", defaults.HideAttribution, "Hide the renderer credit")
	f.Bool("acyclic", false, "Reject connections that would close a cycle")
	f.String("node-ids", config.NodeIDsCounter, "Node id scheme: counter or uuid")
	f.String("watch", "", "Keep running and apply batch files written to this directory")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.String("log-format", "compact", "Log format: compact or json")
	return f
}

func run(ctx context.Context, args []string) error {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Configure(os.Stderr, logging.LevelFromVerbosity(cfg.Verbosity, cfg.VerboseCnt), cfg.LogFormat)
	ctx = logging.NewSession(ctx)
	logging.InfoContext(ctx, "session started", "out", cfg.Out, "watch", cfg.WatchDir)

	initial, err := seed.Load(cfg.Seed)
	if err != nil {
		return err
	}

	broker := pubsub.NewBroker()
	defer broker.Close()

	opts := []store.Option{
		store.WithContext(ctx),
		store.WithPublisher(broker),
		store.WithAcyclic(cfg.Acyclic),
		store.WithEdgeDefaults(cfg.Surface.DefaultEdgeOptions),
	}
	if cfg.NodeIDs == config.NodeIDsUUID {
		opts = append(opts, store.WithNodeIDs(ids.UUID("node-")))
	}

	st, err := store.New(initial, opts...)
	if err != nil {
		return err
	}

	summary := output.Summary{}
	record := func(r store.Result) {
		summary.Diagnostics = append(summary.Diagnostics, r.NodeDiagnostics...)
		summary.Diagnostics = append(summary.Diagnostics, r.EdgeDiagnostics...)
		summary.Rejected = append(summary.Rejected, r.Errors...)
	}

	for _, path := range cfg.Batches {
		b, err := changes.ReadBatch(path)
		if err != nil {
			return err
		}
		record(st.Apply(b))
	}

	conns, err := cfg.Connections()
	if err != nil {
		return err
	}
	if b := (changes.Batch{Connect: conns, AddNodes: cfg.AddNodes}); !b.Empty() {
		record(st.Apply(b))
	}

	render := func(g model.Graph) error {
		return surface.RenderToFile(cfg.Out, g, page(cfg, g))
	}

	snapshot := st.Snapshot()
	if err := render(snapshot); err != nil {
		return err
	}

	analyzed := output.NewSummary(snapshot)
	summary.Graph, summary.Analysis = analyzed.Graph, analyzed.Analysis
	summary.Rendered = cfg.Out
	output.PrintReport(os.Stdout, summary)

	if cfg.WatchDir == "" {
		return nil
	}
	return watch(ctx, cfg.WatchDir, st, broker, render)
}

// watch applies batch files dropped into dir and re-renders on every snapshot
// until ctx is cancelled
func watch(ctx context.Context, dir string, st *store.Store, broker *pubsub.Broker, render surface.RenderFunc) error {
	fw, err := watcher.NewFileWatcher(dir)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	sub, err := broker.Subscribe(ctx, pubsub.TopicGraph)
	if err != nil {
		return fmt.Errorf("subscribing to snapshots: %w", err)
	}

	existing, err := fw.Existing()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logging.InfoContext(ctx, "batch files already present are not applied", "count", len(existing))
	}

	fmt.Printf("Watching %s for batch files (Ctrl+C to stop)\n", dir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return surface.Watch(gctx, sub, render)
	})
	g.Go(func() error {
		for event := range debouncer.Output() {
			analysis := watcher.AnalyzeChanges(event)
			for _, path := range analysis.Apply {
				b, err := changes.ReadBatch(path)
				if err != nil {
					logging.WarnContext(gctx, "skipping batch file", "path", path, "error", err)
					continue
				}
				if r := st.Apply(b); r.Skipped() > 0 {
					logging.WarnContext(gctx, "batch partially applied", "path", path, "skipped", r.Skipped())
				}
			}
			for _, path := range analysis.Withdrawn {
				logging.DebugContext(gctx, "batch file removed; its changes stay applied", "path", path)
			}
		}
		return nil
	})

	err = g.Wait()
	logging.InfoContext(ctx, "stopped watching", "path", dir)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func page(cfg *config.Config, g model.Graph) surface.Page {
	return surface.Page{
		Title:   cfg.Title,
		Header:  cfg.Title,
		Footer:  fmt.Sprintf("%d nodes, %d edges", len(g.Nodes), len(g.Edges)),
		Options: cfg.Surface,
	}
}
