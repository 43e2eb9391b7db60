package alsrpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the AmbientLight service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// GetCurrentLight fetches the most recent reading
func (c *Client) GetCurrentLight(ctx context.Context, opts ...grpc.CallOption) (Reading, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetCurrentLightMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return Reading{}, err
	}
	return ParseReading(out)
}

// GetHistory fetches readings in [start, end)
func (c *Client) GetHistory(ctx context.Context, start, end time.Time, opts ...grpc.CallOption) (History, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetHistoryMethod, RangeRequest(start, end), out, opts...); err != nil {
		return History{}, err
	}
	return ParseHistory(out)
}

// RecordReading stores a manual lux value
func (c *Client) RecordReading(ctx context.Context, lux float64, opts ...grpc.CallOption) (Reading, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordReadingMethod, wrapperspb.Double(lux), out, opts...); err != nil {
		return Reading{}, err
	}
	return ParseReading(out)
}
