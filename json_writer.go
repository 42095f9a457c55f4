package coinwatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object with a fixed field order, so the
// persisted state stays diff friendly.
// Its zero value is ready to use.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// Append adds a new key-value pair, the value is marshaled with json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	keyBytes, _ := json.Marshal(key)
	w.Write(keyBytes)
	w.WriteByte(':')
	w.Write(valBytes)
	w.WriteByte(',')
	return w
}

// Optional appends the pair only if value is not its type's zero value.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// Object appends a nested object built by fill.
func (w *jsonObjectWriter) Object(key string, fill func(*jsonObjectWriter)) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	var nested jsonObjectWriter
	fill(&nested)
	raw, err := nested.MarshalJSON()
	if err != nil {
		w.err = err
		return w
	}
	return w.Append(key, json.RawMessage(raw))
}

// MarshalJSON wraps the content in braces. It satisfies json.Marshaler.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')
	return final, nil
}
