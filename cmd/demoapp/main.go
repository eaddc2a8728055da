// Command demoapp is the HTTP demo named in SPEC_FULL.md §1.2 (mirroring
// the original's app/demo): every request except /health-check is wrapped
// in an "http" action by pkg/actionlog/httpmiddleware (chi engine) or
// pkg/actionlog/fibermiddleware (fiber engine).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/actionlog/fibermiddleware"
	"github.com/JailtonJunior94/devkit-go/pkg/actionlog/httpmiddleware"
	"github.com/JailtonJunior94/devkit-go/pkg/appconfig"
	chiserver "github.com/JailtonJunior94/devkit-go/pkg/http_server/chi_server"
	"github.com/JailtonJunior94/devkit-go/pkg/http_server/common"
	serverfiber "github.com/JailtonJunior94/devkit-go/pkg/http_server/server_fiber"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/otel"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "demoapp",
		Short: "Action-logging HTTP demo",
	}

	var configPath string
	var address string
	var engine string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP demo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, address, engine)
		},
	}
	serve.Flags().StringVar(&configPath, "config", "", "path to a JSON config file")
	serve.Flags().StringVar(&address, "address", ":8080", "listen address")
	serve.Flags().StringVar(&engine, "engine", "chi", "HTTP engine: chi or fiber")

	root.AddCommand(serve)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// httpServer is the common shape both chi_server.Server and
// serverfiber.Server satisfy, letting runServe stay engine-agnostic past
// construction.
type httpServer interface {
	Start(ctx context.Context) error
}

func runServe(configPath, address, engine string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("demoapp: failed to load config: %w", err)
	}

	ctx := context.Background()
	otelCfg := otel.DefaultConfig(cfg.ServiceName)
	otelCfg.Environment = cfg.Environment
	otelCfg.Insecure = true

	provider, err := otel.NewProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("demoapp: failed to build observability provider: %w", err)
	}

	appender := actionlog.NewConsoleAppender()
	obs := actionlog.Wrap(provider, provider.Logger(), appender)

	var server httpServer
	switch engine {
	case "fiber":
		server, err = newFiberServer(obs, cfg, address)
	case "chi", "":
		server, err = newChiServer(obs, cfg, address)
	default:
		return fmt.Errorf("demoapp: unknown engine %q (want chi or fiber)", engine)
	}
	if err != nil {
		return fmt.Errorf("demoapp: failed to build HTTP server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("demoapp: server exited with error: %w", err)
	}
	return provider.Shutdown(ctx)
}

func newChiServer(obs observability.Observability, cfg appconfig.Config, address string) (*chiserver.Server, error) {
	orderEvents, err := newOrderEvents(obs)
	if err != nil {
		return nil, err
	}

	server, err := chiserver.New(obs,
		chiserver.WithServiceName(cfg.ServiceName),
		chiserver.WithEnvironment(cfg.Environment),
		chiserver.WithPort(address),
		chiserver.WithMiddleware(httpmiddleware.Wrap(obs)),
	)
	if err != nil {
		return nil, err
	}
	server.RegisterRouters(&demoRouter{obs: obs, events: orderEvents})
	return server, nil
}

func newFiberServer(obs observability.Observability, cfg appconfig.Config, address string) (*serverfiber.Server, error) {
	orderEvents, err := newOrderEvents(obs)
	if err != nil {
		return nil, err
	}

	serverCfg := common.DefaultConfig()
	serverCfg.ServiceName = cfg.ServiceName
	serverCfg.Environment = cfg.Environment
	serverCfg.Address = address

	server, err := serverfiber.New(obs,
		serverfiber.WithConfig(serverCfg),
		serverfiber.WithMiddleware(fibermiddleware.Wrap(obs)),
	)
	if err != nil {
		return nil, err
	}
	server.RegisterRouters(&demoFiberRouter{obs: obs, events: orderEvents})
	return server, nil
}
