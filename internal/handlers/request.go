package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxBodySize = 1 << 20 // 1 MiB

// Decode reads the JSON body of r into a value of T. The body is size
// limited, unknown fields are rejected and exactly one JSON value is allowed.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var data T
	if err := dec.Decode(&data); err != nil {
		return data, fmt.Errorf("decode: %w", err)
	}

	var trailing struct{}
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return data, fmt.Errorf("decode: body must contain a single JSON value")
		}
		return data, fmt.Errorf("decode: %w", err)
	}

	return data, nil
}
