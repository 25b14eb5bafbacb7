// Command routectl prints the shard iteration orders a node would use for
// request dispatch.
//
// With a static config it builds the snapshot from the configured indices and
// nodes. With nats.url set it reads the snapshot and node attributes from
// JetStream key value buckets instead:
//
//	routectl -config routing.yaml
//	routectl -config routing.yaml -publish -register
//	routectl -config routing.yaml -follow
//	routectl -config routing.yaml -key user-42
//
// Prometheus metrics are served on metrics_addr when set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netconstructor/elasticsearch/adapters/nats"
	promadapter "github.com/netconstructor/elasticsearch/adapters/prometheus"
	"github.com/netconstructor/elasticsearch/core/app"
	"github.com/netconstructor/elasticsearch/core/config"
	"github.com/netconstructor/elasticsearch/core/routing"
)

var (
	flagConfig   = flag.String("config", "", "optional path to config file (yaml)")
	flagKey      = flag.String("key", "", "route this document key instead of listing every shard")
	flagPublish  = flag.Bool("publish", false, "publish the static snapshot to nats before reading it")
	flagRegister = flag.Bool("register", false, "register the configured nodes in the nats node directory")
	flagFollow   = flag.Bool("follow", false, "keep running and print orders whenever a new snapshot is published")
	flagDebug    = flag.Bool("debug", false, "debug logging")
)

func main() {
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	level := slog.LevelInfo
	if *flagDebug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil {
		log.Error("routectl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	settings, err := config.Load(config.Options{File: *flagConfig})
	if err != nil {
		return err
	}

	metrics := promadapter.NewRoutingMetrics(prometheus.DefaultRegisterer)
	if settings.MetricsAddr != "" {
		promMux := http.NewServeMux()
		promMux.Handle("/metrics", promhttp.Handler())
		promServer := &http.Server{Addr: settings.MetricsAddr, Handler: promMux}
		go func() {
			log.Info("prometheus metrics server starting", slog.String("addr", settings.MetricsAddr))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("prometheus server error", slog.Any("error", err))
			}
		}()
		defer promServer.Shutdown(context.Background())
	}

	appCfg := app.Config{
		Context:  ctx,
		Log:      log,
		Settings: settings,
		Metrics:  metrics,
	}

	var store *nats.SnapshotStore
	if settings.Nats.Enabled() {
		connect := nats.ReuseConnection(nats.ConnectURL(settings.Nats.URL))

		store, err = nats.NewSnapshotStore(ctx, nats.SnapshotStoreConfig{
			Connect: connect,
			Bucket:  settings.Nats.SnapshotBucket,
			Log:     log,
		})
		if err != nil {
			return fmt.Errorf("snapshot store: %w", err)
		}
		defer store.Close()

		dir, err := nats.NewNodeDirectory(ctx, nats.NodeDirectoryConfig{
			Connect: connect,
			Bucket:  settings.Nats.NodesBucket,
			Log:     log,
		})
		if err != nil {
			return fmt.Errorf("node directory: %w", err)
		}
		defer dir.Close()

		if *flagRegister {
			for _, n := range settings.Nodes {
				if err := dir.PutNode(ctx, n); err != nil {
					return err
				}
			}
		}
		if *flagPublish {
			table, err := app.StaticTable(settings)
			if err != nil {
				return err
			}
			if err := store.Publish(ctx, table); err != nil && !errors.Is(err, routing.ErrStaleSnapshot) {
				return err
			}
		}

		appCfg.Source = store
		appCfg.Directory = dir
	}

	a, err := app.Run(appCfg)
	if err != nil {
		return err
	}
	defer a.Stop()

	if err := printRoutes(os.Stdout, a.Router(), *flagKey); err != nil {
		return err
	}

	if !*flagFollow {
		return nil
	}
	if store == nil {
		return errors.New("-follow needs nats.url")
	}

	updates := make(chan struct{}, 1)
	err = store.Follow(ctx, a.Router(), func(*routing.Table) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			if err := a.ReloadNodes(ctx); err != nil {
				log.Warn("failed to reload nodes", slog.Any("error", err))
			}
			if err := printRoutes(os.Stdout, a.Router(), *flagKey); err != nil {
				log.Warn("failed to print routes", slog.Any("error", err))
			}
		}
	}
}

func printRoutes(w io.Writer, r *routing.Router, key string) error {
	t, err := r.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "snapshot %s version %d\n", t.ID(), t.Version())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHARD\tSTRATEGY\tORDER")
	for _, index := range t.Indices() {
		if key != "" {
			it, err := r.IteratorForKey(index, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ShardID(), routing.StrategyKey, formatOrder(it))
			continue
		}
		for n := range t.MustIndex(index).NumShards() {
			rows := []struct {
				strategy string
				iter     func(string, int) (routing.Iterator, error)
			}{
				{routing.StrategyRotation, r.Iterator},
				{routing.StrategyRandom, r.RandomIterator},
				{routing.StrategyPreference, r.PreferredIterator},
			}
			for _, row := range rows {
				it, err := row.iter(index, n)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ShardID(), row.strategy, formatOrder(it))
			}
		}
	}
	return tw.Flush()
}

func formatOrder(it routing.Iterator) string {
	var parts []string
	for e := it.NextOrNil(); e != nil; e = it.NextOrNil() {
		role := "r"
		if e.Primary() {
			role = "p"
		}
		node := e.CurrentNodeID()
		if node == "" {
			node = "-"
		}
		parts = append(parts, fmt.Sprintf("%s(%s,%s)", node, role, e.State()))
	}
	if len(parts) == 0 {
		return "<none>"
	}
	return strings.Join(parts, " ")
}
