package alsrpc

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names shared by server and client
const (
	FieldID         = "id"
	FieldLux        = "lux"
	FieldAverage    = "average"
	FieldTimestamp  = "timestamp"
	FieldCategory   = "category"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"
	FieldReadings   = "readings"
	FieldAverageLux = "average_lux"
	FieldMinLux     = "min_lux"
	FieldMaxLux     = "max_lux"
)

// Reading is the wire form of one recorded reading
type Reading struct {
	ID        int64
	Lux       float64
	Average   float64
	Timestamp time.Time
	Category  string
}

// History is a range of readings plus statistics over their lux values
type History struct {
	Readings   []Reading
	AverageLux float64
	MinLux     float64
	MaxLux     float64
}

// Struct encodes r. Timestamps are RFC 3339 with nanoseconds.
func (r Reading) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: r.fields()}
}

func (r Reading) fields() map[string]*structpb.Value {
	return map[string]*structpb.Value{
		FieldID:        structpb.NewNumberValue(float64(r.ID)),
		FieldLux:       structpb.NewNumberValue(r.Lux),
		FieldAverage:   structpb.NewNumberValue(r.Average),
		FieldTimestamp: structpb.NewStringValue(r.Timestamp.UTC().Format(time.RFC3339Nano)),
		FieldCategory:  structpb.NewStringValue(r.Category),
	}
}

// ParseReading decodes a reading produced by Reading.Struct
func ParseReading(s *structpb.Struct) (Reading, error) {
	f := s.GetFields()
	r := Reading{
		ID:       int64(f[FieldID].GetNumberValue()),
		Lux:      f[FieldLux].GetNumberValue(),
		Average:  f[FieldAverage].GetNumberValue(),
		Category: f[FieldCategory].GetStringValue(),
	}
	if ts := f[FieldTimestamp].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Reading{}, fmt.Errorf("parse timestamp: %w", err)
		}
		r.Timestamp = t
	}
	return r, nil
}

// Struct encodes h
func (h History) Struct() *structpb.Struct {
	readings := make([]*structpb.Value, len(h.Readings))
	for i, r := range h.Readings {
		readings[i] = structpb.NewStructValue(r.Struct())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldReadings:   structpb.NewListValue(&structpb.ListValue{Values: readings}),
		FieldAverageLux: structpb.NewNumberValue(h.AverageLux),
		FieldMinLux:     structpb.NewNumberValue(h.MinLux),
		FieldMaxLux:     structpb.NewNumberValue(h.MaxLux),
	}}
}

// ParseHistory decodes a history produced by History.Struct
func ParseHistory(s *structpb.Struct) (History, error) {
	f := s.GetFields()
	h := History{
		AverageLux: f[FieldAverageLux].GetNumberValue(),
		MinLux:     f[FieldMinLux].GetNumberValue(),
		MaxLux:     f[FieldMaxLux].GetNumberValue(),
	}
	for _, v := range f[FieldReadings].GetListValue().GetValues() {
		r, err := ParseReading(v.GetStructValue())
		if err != nil {
			return History{}, err
		}
		h.Readings = append(h.Readings, r)
	}
	return h, nil
}

// RangeRequest builds a GetHistory request for [start, end) in unix seconds
func RangeRequest(start, end time.Time) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldStartTime: structpb.NewNumberValue(float64(start.Unix())),
		FieldEndTime:   structpb.NewNumberValue(float64(end.Unix())),
	}}
}

// ParseRange reads a GetHistory request
func ParseRange(s *structpb.Struct) (start, end time.Time, err error) {
	f := s.GetFields()
	sv, ok := f[FieldStartTime]
	if !ok {
		return start, end, fmt.Errorf("missing %s", FieldStartTime)
	}
	ev, ok := f[FieldEndTime]
	if !ok {
		return start, end, fmt.Errorf("missing %s", FieldEndTime)
	}
	return time.Unix(int64(sv.GetNumberValue()), 0), time.Unix(int64(ev.GetNumberValue()), 0), nil
}
