package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	grpcAdapter "github.com/quentinrf/ambient-light/internal/adapters/grpc"
	"github.com/quentinrf/ambient-light/internal/adapters/memory"
	"github.com/quentinrf/ambient-light/internal/adapters/sysfs"
	"github.com/quentinrf/ambient-light/internal/config"
	"github.com/quentinrf/ambient-light/internal/domain"
	"github.com/quentinrf/ambient-light/internal/locator"
	"github.com/quentinrf/ambient-light/internal/ports"
	"github.com/quentinrf/ambient-light/pkg/alsrpc"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestRoot_SingleShotMock(t *testing.T) {
	out, _, err := execute(t, context.Background(), "--sensor", "mock")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !regexp.MustCompile(`^\d+\.\d\n$`).MatchString(out) {
		t.Errorf("expected one averaged value, got %q", out)
	}
}

func TestRoot_ListenBareMock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	out, _, err := execute(t, ctx, "--sensor", "mock", "-l", "-i", "0.02", "--bare")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected several readings, got %q", out)
	}
	for _, l := range lines {
		if strings.Contains(l, "lux") {
			t.Errorf("bare output should only carry the average, got %q", l)
		}
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	cases := [][]string{
		{"--window-average", "0"},
		{"--interval", "0"},
		{"--sensor", "gpio"},
		{"--interval", "abc"},
		{"--window-average", "x"},
		{"--mock-dropout", "2"},
	}

	for _, args := range cases {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, stderr, err := execute(t, context.Background(), args...)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if out != "" {
				t.Errorf("nothing should be printed to stdout, got %q", out)
			}
			if !strings.Contains(stderr, "--help") {
				t.Errorf("expected usage hint, got %q", stderr)
			}
		})
	}
}

// captureLog redirects the global logger for the duration of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func diagnosticLines(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), "\n")
}

func TestRoot_NoSensorFound(t *testing.T) {
	// no event service, an empty IIO tree and no I2C bus
	prev := sources
	sources = func(cfg config.Config) (locator.EventOpener, ports.Registry) {
		return nil, sysfs.NewRegistry(cfg.SysfsRoot)
	}
	t.Cleanup(func() { sources = prev })
	diag := captureLog(t)

	out, _, err := execute(t, context.Background(), "--sysfs-root", t.TempDir())
	if !errors.Is(err, locator.ErrNoSensor) {
		t.Fatalf("expected ErrNoSensor, got %v", err)
	}
	if out != "" {
		t.Errorf("nothing should be printed to stdout, got %q", out)
	}

	reportError(log.Logger, err)
	if !strings.Contains(diag.String(), "no ambient light sensor found") {
		t.Errorf("expected a diagnostic naming the failure, got %q", diag.String())
	}
}

func TestRoot_SingleShotMissReportedOnce(t *testing.T) {
	diag := captureLog(t)

	out, _, err := execute(t, context.Background(), "--sensor", "mock", "--mock-dropout", "1")
	if !errors.Is(err, domain.ErrSensorUnavailable) {
		t.Fatalf("expected ErrSensorUnavailable, got %v", err)
	}
	if out != "" {
		t.Errorf("nothing should be printed to stdout, got %q", out)
	}

	reportError(log.Logger, err)
	if n := diagnosticLines(diag); n != 1 {
		t.Errorf("expected 1 diagnostic line, got %d: %q", n, diag.String())
	}
	if !strings.Contains(diag.String(), "failed to read lux value") {
		t.Errorf("unexpected diagnostic %q", diag.String())
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	reportError(logger, domain.ErrSensorUnavailable)
	if buf.Len() != 0 {
		t.Errorf("read failures are logged by the sampler, got %q", buf.String())
	}

	reportError(logger, locator.ErrNoSensor)
	if n := diagnosticLines(&buf); n != 1 {
		t.Errorf("expected 1 line, got %d: %q", n, buf.String())
	}
}

func TestRoot_MockSeedIsReproducible(t *testing.T) {
	args := []string{"--sensor", "mock", "--mock-seed", "42"}

	first, _, err := execute(t, context.Background(), args...)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	second, _, err := execute(t, context.Background(), args...)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if first != second {
		t.Errorf("seeded runs differ: %q vs %q", first, second)
	}
}

func TestQuery(t *testing.T) {
	repo := memory.NewReadingRepository()
	ctx := context.Background()
	for _, r := range []struct{ lux, avg float64 }{{100, 100}, {300, 200}} {
		if err := repo.SaveReading(ctx, &domain.LightReading{Lux: r.lux, Average: r.avg, Timestamp: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	srv := grpc.NewServer()
	alsrpc.RegisterAmbientLightServer(srv, grpcAdapter.NewAmbientLightHandler(repo))
	go srv.Serve(lis)
	t.Cleanup(srv.GracefulStop)

	out, _, err := execute(t, ctx, "query", "--server", lis.Addr().String(), "--since", "1h")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if !strings.Contains(out, "300.0 lux (avg: 200.0)  Medium Light") {
		t.Errorf("missing current reading in %q", out)
	}
	if !strings.Contains(out, "2 readings, avg 200.0 min 100.0 max 300.0 lux") {
		t.Errorf("missing history summary in %q", out)
	}
}
