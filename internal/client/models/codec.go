package models

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeFields serialises a field map as a protobuf Struct.
func EncodeFields(fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeFields is the inverse of EncodeFields. Numbers come back as float64.
func DecodeFields(b []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	m := s.AsMap()
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// EncodeRecord serialises a full record snapshot for the sync queue.
func EncodeRecord(r *Record) ([]byte, error) {
	fields := r.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	m := map[string]any{
		"id":        r.ID,
		"createdAt": r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": r.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"fields":    fields,
	}
	if r.UserID != nil {
		m["userId"] = *r.UserID
	}
	return EncodeFields(m)
}

func DecodeRecord(b []byte) (*Record, error) {
	m, err := DecodeFields(b)
	if err != nil {
		return nil, err
	}

	r := &Record{Fields: map[string]any{}}
	r.ID, _ = m["id"].(string)
	if uid, ok := m["userId"].(string); ok {
		r.UserID = &uid
	}
	if r.CreatedAt, err = parseTime(m["createdAt"]); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", r.ID, err)
	}
	if r.UpdatedAt, err = parseTime(m["updatedAt"]); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", r.ID, err)
	}
	if f, ok := m["fields"].(map[string]any); ok {
		r.Fields = f
	}
	return r, nil
}

func parseTime(v any) (time.Time, error) {
	s, _ := v.(string)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
