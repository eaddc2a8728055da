// Command logexporter is the log exporter demo (SPEC_FULL.md §1.2),
// mirroring the original's log_exporter: it consumes the action-log topic
// in bulk and writes each batch to a local directory standing in for an
// object-storage bucket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/appconfig"
	"github.com/JailtonJunior94/devkit-go/pkg/dispatcher"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/otel"
	"github.com/JailtonJunior94/devkit-go/pkg/tasktracker"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	var exportDir string

	root := &cobra.Command{
		Use:   "logexporter",
		Short: "Export the action-log topic to batched files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, exportDir)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a JSON config file")
	root.Flags().StringVar(&exportDir, "export-dir", "./exports", "directory batches are written to")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, exportDir string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("logexporter: failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelCfg := otel.DefaultConfig(cfg.ServiceName)
	otelCfg.Environment = cfg.Environment
	otelCfg.Insecure = true

	provider, err := otel.NewProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("logexporter: failed to build observability provider: %w", err)
	}
	defer provider.Shutdown(context.Background())

	appender := actionlog.NewConsoleAppender()
	obs := actionlog.Wrap(provider, provider.Logger(), appender)

	exporter, err := newBucketExporter(exportDir)
	if err != nil {
		return err
	}

	d := dispatcher.New[struct{}](obs, struct{}{}, []string{cfg.ActionLogTopic}, dispatcher.Config{
		BootstrapServers: cfg.BootstrapServers,
		GroupID:          cfg.GroupID,
	})
	defer d.Close()

	if err := dispatcher.AddBulkHandler[struct{}, json.RawMessage](d, cfg.ActionLogTopic, exporter.export); err != nil {
		return fmt.Errorf("logexporter: failed to register handler: %w", err)
	}

	tracker := tasktracker.New(obs)
	broadcaster := tasktracker.NewBroadcaster()
	broadcaster.ListenForSignals()

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
		obs.Logger().Warn(shutdownCtx, "logexporter: shutdown timed out")
	}

	return <-runErr
}
