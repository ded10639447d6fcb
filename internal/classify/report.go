package classify

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// Field is one key/value pair contributed to a report.
type Field struct {
	Key   string
	Value interface{}
}

// Contributor is implemented by every stage result.
type Contributor interface {
	Fields() []Field
}

// Report is an insertion-ordered mapping from report keys to values. It
// encodes to a flat JSON object whose keys appear in stage order.
type Report struct {
	keys   []string
	values map[string]interface{}
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{values: make(map[string]interface{})}
}

// Merge combines stage contributions in order. A key contributed twice is a
// schema collision.
func Merge(contributions ...Contributor) (*Report, error) {
	r := NewReport()
	for _, c := range contributions {
		for _, f := range c.Fields() {
			if err := r.add(f.Key, f.Value); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Report) add(key string, value interface{}) error {
	if _, exists := r.values[key]; exists {
		return apperrors.NewSchemaCollisionError(key)
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
	return nil
}

// Len returns the number of keys.
func (r *Report) Len() int { return len(r.keys) }

// Keys returns the keys in insertion order.
func (r *Report) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Get returns the value stored under key.
func (r *Report) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns the value under key if it is a string.
func (r *Report) String(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// ArtForm returns the predicted art form.
func (r *Report) ArtForm() string { return r.String("predictedArtForm") }

// Confidence returns the art form confidence. Reports decoded from JSON hold
// numbers as json.Number, which is handled too.
func (r *Report) Confidence() float64 {
	switch v := r.values["artFormConfidence"].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a report, keeping the key order of the document.
func (r *Report) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("report must be a JSON object")
	}

	restored := NewReport()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode %q: %w", key, err)
		}
		if err := restored.add(key, value); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = *restored
	return nil
}
