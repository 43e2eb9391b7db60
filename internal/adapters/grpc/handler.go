package grpc

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/quentinrf/ambient-light/internal/domain"
	"github.com/quentinrf/ambient-light/pkg/alsrpc"
)

// AmbientLightHandler implements the gRPC AmbientLight service.
// It only reads the repository; the sampler is the sole sensor user.
type AmbientLightHandler struct {
	repo domain.ReadingRepository
}

var _ alsrpc.AmbientLightServer = (*AmbientLightHandler)(nil)

// NewAmbientLightHandler creates a new gRPC handler
func NewAmbientLightHandler(repo domain.ReadingRepository) *AmbientLightHandler {
	return &AmbientLightHandler{repo: repo}
}

// GetCurrentLight returns the most recent reading
func (h *AmbientLightHandler) GetCurrentLight(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log.Debug().Msg("GetCurrentLight called")

	reading, err := h.repo.GetLatestReading(ctx)
	if errors.Is(err, domain.ErrReadingNotFound) {
		return nil, status.Error(codes.NotFound, "no readings recorded yet")
	} else if err != nil {
		log.Error().Err(err).Msg("failed to get latest reading")
		return nil, status.Error(codes.Internal, "failed to get reading")
	}

	return toWire(reading).Struct(), nil
}

// GetHistory returns readings within time range with statistics
func (h *AmbientLightHandler) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := alsrpc.ParseRange(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if end.Before(start) {
		return nil, status.Error(codes.InvalidArgument, "end_time before start_time")
	}

	log.Debug().
		Int64("start", start.Unix()).
		Int64("end", end.Unix()).
		Msg("GetHistory called")

	readings, err := h.repo.GetReadingsInRange(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get readings")
		return nil, status.Error(codes.Internal, "failed to get readings")
	}

	history := alsrpc.History{Readings: make([]alsrpc.Reading, len(readings))}
	for i, r := range readings {
		history.Readings[i] = toWire(r)
	}
	stats := calculateStatistics(readings)
	history.AverageLux, history.MinLux, history.MaxLux = stats.average, stats.min, stats.max

	return history.Struct(), nil
}

// RecordReading manually records a reading; the value is its own average
func (h *AmbientLightHandler) RecordReading(ctx context.Context, req *wrapperspb.DoubleValue) (*structpb.Struct, error) {
	lux := req.GetValue()
	log.Info().Float64("lux", lux).Msg("RecordReading called")

	reading, err := domain.NewLightReading(lux, lux)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.repo.SaveReading(ctx, reading); err != nil {
		log.Error().Err(err).Msg("failed to save reading")
		return nil, status.Error(codes.Internal, "failed to save reading")
	}

	return toWire(reading).Struct(), nil
}

func toWire(r *domain.LightReading) alsrpc.Reading {
	return alsrpc.Reading{
		ID:        r.ID,
		Lux:       r.Lux,
		Average:   r.Average,
		Timestamp: r.Timestamp,
		Category:  r.LightCategory(),
	}
}

type statistics struct {
	average float64
	min     float64
	max     float64
}

// calculateStatistics computes stats over raw lux values
func calculateStatistics(readings []*domain.LightReading) statistics {
	if len(readings) == 0 {
		return statistics{}
	}

	var sum float64
	min := readings[0].Lux
	max := readings[0].Lux

	for _, r := range readings {
		sum += r.Lux
		if r.Lux < min {
			min = r.Lux
		}
		if r.Lux > max {
			max = r.Lux
		}
	}

	return statistics{
		average: sum / float64(len(readings)),
		min:     min,
		max:     max,
	}
}
