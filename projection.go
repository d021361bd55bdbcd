// Copyright (c) 2026 FractalDB Authors. All rights reserved.

package fractaldb

import "encoding/json"

// applyProjection restricts or excludes top-level fields from an encoded
// document body before it is decoded into T, implementing
// QueryOptions.Project/Omit. The two are mutually exclusive, enforced by
// query.QueryOptions.Validate before translation; fields are left as
// json.RawMessage so nested structure is never re-parsed.
func applyProjection(data []byte, project, omit []string) ([]byte, error) {
	if len(project) == 0 && len(omit) == 0 {
		return data, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	if len(project) > 0 {
		kept := make(map[string]json.RawMessage, len(project))
		for _, f := range project {
			if v, ok := fields[f]; ok {
				kept[f] = v
			}
		}
		fields = kept
	} else {
		for _, f := range omit {
			delete(fields, f)
		}
	}

	return json.Marshal(fields)
}
