package referral

import (
	"encoding/json"
	"strconv"
	"strings"
)

// fields is a loosely read JSON object. The server owns the response shape, so
// lookups never fail: a missing key or a value of another type yields the zero value.
type fields map[string]json.RawMessage

// objectFields reads raw as a JSON object; anything else gives an empty set.
func objectFields(raw json.RawMessage) fields {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return fields{}
	}
	return f
}

func (f fields) object(key string) fields {
	v, ok := f[key]
	if !ok {
		return fields{}
	}
	return objectFields(v)
}

func (f fields) objects(key string) []fields {
	var items []json.RawMessage
	if err := json.Unmarshal(f[key], &items); err != nil {
		return nil
	}
	out := make([]fields, 0, len(items))
	for _, item := range items {
		out = append(out, objectFields(item))
	}
	return out
}

// str returns strings as-is and numbers in their JSON text form.
func (f fields) str(key string) string {
	v := f[key]
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

// float accepts JSON numbers and numeric strings.
func (f fields) float(key string) float64 {
	if p := f.floatPtr(key); p != nil {
		return *p
	}
	return 0
}

// floatPtr is float with null or absent mapped to nil.
func (f fields) floatPtr(key string) *float64 {
	v := f[key]
	if len(v) == 0 || string(v) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &n
		}
	}
	return nil
}

// int truncates fractional values, so 12.0 reads as 12.
func (f fields) int(key string) int64 {
	return int64(f.float(key))
}

func (f fields) boolean(key string) bool {
	var b bool
	if err := json.Unmarshal(f[key], &b); err == nil {
		return b
	}
	return false
}
