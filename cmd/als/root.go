package main

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	grpcAdapter "github.com/quentinrf/ambient-light/internal/adapters/grpc"
	"github.com/quentinrf/ambient-light/internal/adapters/bh1750"
	"github.com/quentinrf/ambient-light/internal/adapters/memory"
	"github.com/quentinrf/ambient-light/internal/adapters/mock"
	"github.com/quentinrf/ambient-light/internal/adapters/mqtt"
	"github.com/quentinrf/ambient-light/internal/adapters/sqlite"
	"github.com/quentinrf/ambient-light/internal/config"
	"github.com/quentinrf/ambient-light/internal/domain"
	"github.com/quentinrf/ambient-light/internal/locator"
	"github.com/quentinrf/ambient-light/internal/ports"
	"github.com/quentinrf/ambient-light/pkg/alsrpc"
	"github.com/quentinrf/ambient-light/pkg/tlsconfig"
)

func newRootCmd() *cobra.Command {
	cfg, envErr := config.FromEnv()

	cmd := &cobra.Command{
		Use:   "als",
		Short: "Read the ambient light sensor",
		Long: `Print the ambient light level in lux, smoothed over a moving window.

Without --listen a single averaged value is printed. With --listen a line
is printed every interval until interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if envErr != nil {
				return usageError(cmd, envErr)
			}
			if err := cfg.Validate(); err != nil {
				return usageError(cmd, err)
			}
			lvl, _ := cfg.Level()
			zerolog.SetGlobalLevel(lvl)

			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cfg.BindFlags(cmd.Flags())
	// unparsable values never reach RunE
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(c, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err))
	})
	cmd.AddCommand(newQueryCmd())
	return cmd
}

// sources supplies the platform's event service and registry to the locator
var sources = platformSources

func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Run '%s --help' for usage.\n", cmd.CommandPath())
	return err
}

// run wires the pipeline; every opened resource is closed on return
func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	sensor, err := openSensor(ctx, cfg)
	if err != nil {
		return err
	}
	defer sensor.Close()

	window, err := domain.NewWindowAverager(cfg.Window)
	if err != nil {
		return err
	}

	opts := []ports.SamplerOption{ports.WithBare(cfg.Bare), ports.WithOutput(out)}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	// the gRPC API serves recorded history, so listen mode always records
	if repo == nil && cfg.Listen && cfg.GRPCAddr != "" {
		repo = memory.NewReadingRepository()
	}
	if repo != nil {
		opts = append(opts, ports.WithRepository(repo, cfg.Retention))
	}

	if cfg.MQTTServer != "" {
		pub, err := mqtt.New(mqtt.Config{
			Server:         cfg.MQTTServer,
			Username:       cfg.MQTTUser,
			Password:       cfg.MQTTPass,
			ClientID:       cfg.MQTTClientID,
			StateTopic:     cfg.MQTTTopic,
			DiscoveryTopic: cfg.MQTTDiscoveryTopic,
		})
		if err != nil {
			return err
		}
		defer pub.Close()
		opts = append(opts, ports.WithPublishers(pub))
		log.Info().Str("server", cfg.MQTTServer).Str("topic", cfg.MQTTTopic).Msg("publishing readings to MQTT")
	}

	sampler := ports.NewSampler(sensor, window, cfg.Interval(), opts...)

	if !cfg.Listen {
		if cfg.GRPCAddr != "" {
			log.Warn().Msg("--grpc-addr is ignored without --listen")
		}
		return sampler.RunOnce(ctx)
	}

	if cfg.GRPCAddr != "" {
		stopServer, err := serveGRPC(cfg, repo)
		if err != nil {
			return err
		}
		defer stopServer()
	}

	return sampler.Run(ctx)
}

// openSensor picks the sensor for this session
func openSensor(ctx context.Context, cfg config.Config) (ports.LightSensor, error) {
	switch cfg.Sensor {
	case config.SensorMock:
		log.Debug().Int64("seed", cfg.MockSeed).Float64("dropout", cfg.MockDropout).Msg("using mock sensor")
		opts := []mock.Option{mock.WithDropout(cfg.MockDropout)}
		if cfg.MockSeed != 0 {
			opts = append(opts, mock.WithSeed(cfg.MockSeed))
		}
		return mock.NewFakeSensor(500.0, 100.0, opts...), nil
	case config.SensorBH1750:
		s, err := bh1750.Open(ctx, cfg.I2CBus, cfg.I2CAddress)
		if err != nil {
			return nil, fmt.Errorf("open bh1750: %w", err)
		}
		return s, nil
	}

	events, registry := sources(cfg)
	loc := locator.New(log.Logger, locator.Chain(events, registry,
		bh1750.Probe{Bus: cfg.I2CBus, Address: cfg.I2CAddress})...)

	sensor, ok := loc.Locate(ctx)
	if !ok {
		return nil, locator.ErrNoSensor
	}
	return sensor, nil
}

// openRepository returns nil when no history is kept
func openRepository(cfg config.Config) (domain.ReadingRepository, func(), error) {
	if cfg.DBPath == "" {
		return nil, func() {}, nil
	}
	r, err := sqlite.NewReadingRepository(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history database %s: %w", cfg.DBPath, err)
	}
	log.Info().Str("db_path", cfg.DBPath).Msg("recording readings to SQLite")
	return r, func() { r.Close() }, nil
}

// serveGRPC starts the AmbientLight server in the background
func serveGRPC(cfg config.Config, repo domain.ReadingRepository) (func(), error) {
	var serverOpts []grpc.ServerOption
	if cfg.TLS.Enabled() {
		tlsCfg, err := tlsconfig.LoadServerTLS(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("load TLS config: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("TLS_CERT not set, serving gRPC without TLS")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	srv := grpc.NewServer(serverOpts...)
	alsrpc.RegisterAmbientLightServer(srv, grpcAdapter.NewAmbientLightHandler(repo))

	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server stopped")
		}
	}()
	log.Info().Str("addr", lis.Addr().String()).Msg("gRPC server listening")

	return srv.GracefulStop, nil
}
