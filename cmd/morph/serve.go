package main

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/morph/internal/config"
	"github.com/vango-dev/morph/internal/errors"
	"github.com/vango-dev/morph/pkg/instrument"
	"github.com/vango-dev/morph/pkg/server"
	"github.com/vango-dev/morph/pkg/snapshot"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tree server",
		Long: `Serve runs an HTTP server that holds live trees by id.

Routes:
  POST   /trees             Create a tree from the HTML body
  GET    /trees             List tree ids
  GET    /trees/{id}        Render a tree
  PUT    /trees/{id}        Reconcile the tree against the HTML body
  DELETE /trees/{id}        Delete a tree
  GET    /trees/{id}/watch  Stream mutations over a WebSocket

Trees are saved to the configured store after every change and
restored from it on startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "Host to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")

	return cmd
}

func runServe(ctx context.Context, out, errOut io.Writer, cfg *config.Config) error {
	logger, err := newLogger(errOut, cfg.Log)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	runnerOpts := []instrument.RunnerOption{instrument.WithLogger(logger)}
	serverOpts := []server.Option{
		server.WithStore(store),
		server.WithLogger(logger),
	}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := instrument.NewMetrics(
			instrument.WithNamespace(cfg.Metrics.Namespace),
			instrument.WithRegistry(registry),
		)
		runnerOpts = append(runnerOpts, instrument.WithMetrics(metrics))
		serverOpts = append(serverOpts, server.WithGatherer(registry))
	}
	if cfg.Tracing.Enabled {
		runnerOpts = append(runnerOpts, instrument.WithTracer(otel.Tracer(cfg.Tracing.TracerName)))
	}
	serverOpts = append(serverOpts, server.WithRunner(instrument.NewRunner(runnerOpts...)))

	srv := server.New(serverConfig(cfg), serverOpts...)

	restored, err := srv.Restore(ctx)
	if err != nil {
		return err
	}
	if restored > 0 {
		info(out, "Restored %d trees from the %s store", restored, cfg.Store.Backend)
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	success(out, "Serving on http://%s", ln.Addr())
	if cfg.Metrics.Enabled {
		info(out, "Metrics at http://%s%s", ln.Addr(), cfg.Metrics.Path)
	}
	return srv.Serve(ctx, ln)
}

// serverConfig maps the config file onto the server package.
func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		Address:             cfg.Addr(),
		MaxBodyBytes:        cfg.Server.MaxBodyBytes,
		ReadTimeout:         cfg.Server.ReadTimeout.Duration,
		WriteTimeout:        cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout:     cfg.Server.ShutdownTimeout.Duration,
		KeyAttribute:        cfg.Reconcile.KeyAttribute,
		ChildrenOnly:        cfg.Reconcile.ChildrenOnly,
		IgnoreControlValues: cfg.Reconcile.IgnoreControlValues,
		MetricsPath:         cfg.Metrics.Path,
	}
}

// openStore builds the snapshot backend named by the config. The returned
// func releases its connections.
func openStore(ctx context.Context, c config.StoreConfig) (snapshot.Store, func(), error) {
	var (
		store   snapshot.Store
		release = func() {}
	)

	switch c.Backend {
	case "", "memory":
		store = snapshot.NewMemoryStore()
	case "redis":
		rs, err := snapshot.OpenRedisStore(ctx, c.RedisURL, c.Prefix)
		if err != nil {
			return nil, nil, err
		}
		store = rs.WithTTL(c.TTL.Duration)
		release = func() { _ = rs.Close() }
	case "s3":
		store = snapshot.NewS3Store(newS3Client(c.Region), c.Bucket, c.Prefix)
	default:
		return nil, nil, errors.New("C003").WithDetailf("store.backend: unknown backend %q", c.Backend)
	}

	if c.Compress {
		store = snapshot.Compressed(store)
	}
	return store, release, nil
}

// newS3Client creates an S3 client using credentials from the standard
// AWS_* environment variables. AWS_ENDPOINT_URL points it at an
// S3-compatible service with path-style addressing.
func newS3Client(region string) *s3.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("S002").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
	}
	return creds, nil
}
