// Package validator decodes JSON request bodies with strict limits: a size
// cap, no unknown fields, and exactly one value per body.
package validator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var ErrInvalidJSON = errors.New("invalid json")

const defaultBodyLimit = 1 << 20

type JSON struct {
	// Limit caps the accepted body size in bytes.
	Limit int64
}

func NewJSON() *JSON {
	return &JSON{Limit: defaultBodyLimit}
}

func (v *JSON) Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, v.Limit)
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ErrInvalidJSON
	}
	// Anything after the first value, JSON or not, is a malformed body.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrInvalidJSON
	}
	return nil
}
