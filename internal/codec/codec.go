// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package codec implements the encode/decode contract of §6.3: a
bidirectional JSON codec between a document's Go value and the bytes
stored in the backend's binary JSON column, plus single-path value
extraction, which the unique-constraint error path uses to recover the
colliding value from a document body without decoding it into T.

There is no candidate third-party serialisation library in the example
corpus beyond encoding/json itself — it is what the teacher repo's own
request/response packages import directly for this exact concern — so
the default [JSON] codec is deliberately a thin wrapper rather than
reaching for an unrelated dependency.
*/
package codec

import "encoding/json"

// Codec converts between a document's typed value and the bytes persisted
// in the backend. Implementations must round-trip: encode(decode(b)) == b
// is not required, but decode(encode(v)) == v is.
type Codec interface {
	Encode(value any) ([]byte, error)
	Decode(data []byte, out any) error
	// DecodeValuePath extracts a single scalar from encoded data at a
	// dotted JSON path (e.g. "$.address.city") without fully decoding the
	// document.
	DecodeValuePath(data []byte, path string) (any, error)
}

// JSON is the default [Codec], backed by encoding/json with camelCase
// field naming left to the caller's struct tags.
type JSON struct{}

// Encode marshals value to JSON bytes.
func (JSON) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode unmarshals data into out, which must be a pointer.
func (JSON) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// DecodeValuePath decodes data into a generic tree and walks path, which
// must be of the form "$.a.b.c". It returns nil, nil if any segment is
// absent, matching the lenient field-resolution rule of §4.1.
func (JSON) DecodeValuePath(data []byte, path string) (any, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	segments := splitPath(path)
	cur := tree
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil, nil
		}
	}
	return cur, nil
}

// splitPath turns "$.a.b" into ["a", "b"]; "$" alone yields no segments.
func splitPath(path string) []string {
	if len(path) == 0 {
		return nil
	}
	if path[0] == '$' {
		path = path[1:]
	}
	if len(path) > 0 && path[0] == '.' {
		path = path[1:]
	}
	if path == "" {
		return nil
	}

	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	return segments
}
