package app

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/netconstructor/elasticsearch/core/config"
	"github.com/netconstructor/elasticsearch/core/routing"
	"github.com/netconstructor/elasticsearch/ports/directory"
)

type Config struct {
	Context  context.Context
	Log      *slog.Logger
	Settings *config.Config
	// Source supplies snapshots. Defaults to an in-memory source holding
	// StaticTable(Settings).
	Source routing.Source
	// Directory supplies node attributes. Defaults to the nodes in Settings.
	Directory directory.Directory
	Metrics   routing.Metrics
	Seeds     routing.SeedSource
}

// App wires a Router to its snapshot source and node directory.
type App struct {
	ctx       context.Context
	log       *slog.Logger
	cancelCtx context.CancelFunc
	settings  config.Config
	source    routing.Source
	directory directory.Directory
	router    *routing.Router
}

func New(cfg Config) (app *App, err error) {
	app = &App{}

	// === settings ===
	if cfg.Settings != nil {
		app.settings = *cfg.Settings
	}
	if app.settings.LocalNodeID == "" {
		app.settings.LocalNodeID = fmt.Sprintf("node-%s", gonanoid.Must(6))
	}
	if err := app.settings.Validate(); err != nil {
		return nil, err
	}

	// === logger ===
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	app.log = cfg.Log.With(slog.String("node", app.settings.LocalNodeID))

	// === context ===
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	app.ctx, app.cancelCtx = context.WithCancel(cfg.Context)

	// === directory ===
	app.directory = cfg.Directory
	if app.directory == nil {
		app.directory = directory.NewMemDirectory(app.settings.Nodes...)
	}

	// === source ===
	app.source = cfg.Source
	if app.source == nil {
		table, err := StaticTable(&app.settings)
		if err != nil {
			app.cancelCtx()
			return nil, err
		}
		mem := routing.NewMemSource()
		if err := mem.Publish(app.ctx, table); err != nil {
			app.cancelCtx()
			return nil, err
		}
		app.source = mem
	}

	app.log.Debug("creating app",
		slog.Any("awareness_attributes", app.settings.AwarenessAttributes),
		slog.Int("indices", len(app.settings.Indices)),
	)

	app.router = routing.NewRouter(routing.RouterOptions{
		Log:                 app.log,
		Source:              app.source,
		AwarenessAttributes: app.settings.AwarenessAttributes,
		Metrics:             cfg.Metrics,
		PreferenceCacheSize: app.settings.PreferenceCacheSize,
		Seeds:               cfg.Seeds,
	})

	return app, nil
}

// StaticTable builds the snapshot of a static deployment: every configured
// index with all copies started across the configured nodes, as far as there
// are enough of them.
func StaticTable(settings *config.Config) (*routing.Table, error) {
	b := routing.NewTableBuilder()
	for _, ic := range settings.Indices {
		idx, err := routing.NewEmptyIndexTable(ic.Name, ic.Shards, ic.Replicas)
		if err != nil {
			return nil, err
		}
		b.AddIndex(idx)
	}
	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	if len(settings.Nodes) == 0 {
		return t, nil
	}
	if t, err = routing.AssignUnassigned(t, settings.NodeIDs(), ""); err != nil {
		return nil, err
	}
	return routing.StartInitializing(t)
}

func (a *App) Router() *routing.Router { return a.router }

func (a *App) Settings() config.Config { return a.settings }

func (a *App) Context() context.Context { return a.ctx }

// ReloadNodes refreshes the router's view of node attributes.
func (a *App) ReloadNodes(ctx context.Context) error {
	if err := directory.Load(ctx, a.directory, a.settings.LocalNodeID, a.router); err != nil {
		return fmt.Errorf("load nodes: %w", err)
	}
	return nil
}

// Run loads the nodes and the current snapshot.
func (a *App) Run() (err error) {
	if err = a.ReloadNodes(a.ctx); err != nil {
		return err
	}
	t, err := a.router.Refresh(a.ctx)
	if err != nil {
		return err
	}

	a.log.Info("app started", slog.String("snapshot", t.ID()), slog.Int64("version", t.Version()))

	return nil
}

func (a *App) Stop() {
	a.cancelCtx()
}

func Run(cfg Config) (app *App, err error) {
	app, err = New(cfg)
	if err != nil {
		return nil, err
	}

	err = app.Run()
	if err != nil {
		app.Stop()
		return nil, err
	}

	return app, nil
}
