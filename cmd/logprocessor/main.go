// Command logprocessor is the log processor demo (SPEC_FULL.md §1.2),
// mirroring the original's log_processor: it consumes the action-log topic
// in bulk, indexing each record into a search backend, and simultaneously
// consumes an independent stat topic one event at a time, demonstrating two
// handlers bound to a single Dispatcher.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/appconfig"
	"github.com/JailtonJunior94/devkit-go/pkg/dispatcher"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/otel"
	"github.com/JailtonJunior94/devkit-go/pkg/scheduler"
	"github.com/JailtonJunior94/devkit-go/pkg/tasktracker"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	var searchBackend string
	var searchURL string
	var statTopic string
	var postgresDSN string
	var migrationsSource string
	var retention time.Duration
	var purgeInterval time.Duration

	root := &cobra.Command{
		Use:   "logprocessor",
		Short: "Index the action-log topic and consume the stat topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				configPath:       configPath,
				searchBackend:    searchBackend,
				searchURL:        searchURL,
				statTopic:        statTopic,
				postgresDSN:      postgresDSN,
				migrationsSource: migrationsSource,
				retention:        retention,
				purgeInterval:    purgeInterval,
			})
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a JSON config file")
	root.Flags().StringVar(&searchBackend, "search-backend", "elasticsearch", "search backend: elasticsearch, opensearch, or postgres")
	root.Flags().StringVar(&searchURL, "search-url", "http://localhost:9200", "base URL of the Elasticsearch/OpenSearch cluster")
	root.Flags().StringVar(&statTopic, "stat-topic", "action-log-stats", "Kafka topic carrying ad-hoc numeric stat events")
	root.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "Postgres DSN, used when --search-backend=postgres")
	root.Flags().StringVar(&migrationsSource, "migrations-source", "", "golang-migrate source URL; when empty, schema is created inline")
	root.Flags().DurationVar(&retention, "retention", 0, "when set and --search-backend=postgres, purge records older than this on a schedule")
	root.Flags().DurationVar(&purgeInterval, "purge-interval", time.Hour, "how often the retention purge job runs")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath       string
	searchBackend    string
	searchURL        string
	statTopic        string
	postgresDSN      string
	migrationsSource string
	retention        time.Duration
	purgeInterval    time.Duration
}

func run(opts runOptions) error {
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("logprocessor: failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelCfg := otel.DefaultConfig(cfg.ServiceName)
	otelCfg.Environment = cfg.Environment
	otelCfg.Insecure = true

	provider, err := otel.NewProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("logprocessor: failed to build observability provider: %w", err)
	}
	defer provider.Shutdown(context.Background())

	appender := actionlog.NewConsoleAppender()
	obs := actionlog.Wrap(provider, provider.Logger(), appender)

	index, err := buildSearchIndex(ctx, obs, opts)
	if err != nil {
		return err
	}
	defer index.Close()

	state := processorState{obs: obs, index: index}

	topics := []string{cfg.ActionLogTopic, opts.statTopic}
	d := dispatcher.New[processorState](obs, state, topics, dispatcher.Config{
		BootstrapServers: cfg.BootstrapServers,
		GroupID:          cfg.GroupID,
	})
	defer d.Close()

	if err := dispatcher.AddBulkHandler[processorState, wireRecord](d, cfg.ActionLogTopic, indexBatch); err != nil {
		return fmt.Errorf("logprocessor: failed to register record handler: %w", err)
	}
	if err := dispatcher.AddHandler[processorState, statEvent](d, opts.statTopic, handleStat); err != nil {
		return fmt.Errorf("logprocessor: failed to register stat handler: %w", err)
	}

	tracker := tasktracker.New(obs)
	broadcaster := tasktracker.NewBroadcaster()
	broadcaster.ListenForSignals()

	if pgIndex, ok := index.(*postgresSearchIndex); ok && opts.retention > 0 {
		retentionJobs := scheduler.New[processorState](obs, time.Local)
		retentionJobs.ScheduleFixedRate("purge-expired-records", func(ctx context.Context, state processorState) error {
			deleted, err := pgIndex.PurgeOlderThan(ctx, time.Now().Add(-opts.retention))
			if err != nil {
				return err
			}
			state.obs.Logger().Info(ctx, "logprocessor: purged expired records",
				observability.Int("deleted", deleted))
			return nil
		}, opts.purgeInterval)

		purgeShutdown := make(chan struct{})
		defer close(purgeShutdown)
		_ = tracker.SpawnTask(ctx, func(taskCtx context.Context) error {
			return retentionJobs.Start(taskCtx, state, purgeShutdown)
		})
	}

	runErr := tracker.SpawnTask(ctx, func(taskCtx context.Context) error {
		return d.Run(taskCtx, broadcaster.C())
	})

	select {
	case <-ctx.Done():
		broadcaster.Fire()
	case <-broadcaster.C():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := tracker.Shutdown(shutdownCtx); err != nil {
		obs.Logger().Warn(shutdownCtx, "logprocessor: shutdown timed out")
	}

	return <-runErr
}

func buildSearchIndex(ctx context.Context, obs observability.Observability, opts runOptions) (SearchIndex, error) {
	switch opts.searchBackend {
	case "postgres":
		if opts.migrationsSource != "" {
			return newPostgresSearchIndexWithMigrator(ctx, opts.postgresDSN, opts.migrationsSource)
		}
		return newPostgresSearchIndex(ctx, opts.postgresDSN)
	case "elasticsearch", "opensearch":
		return newHTTPSearchIndex(obs, opts.searchURL, "action-log-records")
	default:
		return nil, fmt.Errorf("logprocessor: unknown search backend %q", opts.searchBackend)
	}
}
