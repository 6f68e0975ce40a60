package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrMalformedPayload is returned by Decode for payloads that do not have the
// persisted shape. The store reacts by keeping its defaults.
var ErrMalformedPayload = errors.New("malformed todo payload")

// payload is the persisted form: {"todos": [...], "nextId": n}.
type payload struct {
	Todos  []model.Item `json:"todos"`
	NextID int          `json:"nextId"`
}

// Encode serializes s into the persisted form.
func Encode(s model.State) ([]byte, error) {
	p := payload{Todos: s.Items, NextID: s.NextID}
	if p.Todos == nil {
		p.Todos = []model.Item{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a persisted payload. The envelope must be an object with a
// "todos" list and a numeric "nextId"; individual records are coerced field by
// field instead of being rejected.
func Decode(data []byte) (model.State, error) {
	var raw any
	if err := oj.Unmarshal(data, &raw); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.State{}, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}
	list, ok := obj["todos"].([]any)
	if !ok {
		return model.State{}, fmt.Errorf("%w: todos is not a list", ErrMalformedPayload)
	}
	next, ok := asInt(obj["nextId"])
	if !ok {
		return model.State{}, fmt.Errorf("%w: nextId is not a number", ErrMalformedPayload)
	}

	items := make([]model.Item, 0, len(list))
	for _, rec := range list {
		fields, _ := rec.(map[string]any)
		items = append(items, model.Item{
			ID:    coerceInt(fields["id"]),
			Title: coerceString(fields["title"]),
			Done:  truthy(fields["done"]),
		})
	}
	return model.State{Items: items, NextID: next}, nil
}

// asNumber accepts only JSON numbers.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// asInt accepts only JSON numbers. Integers are taken as is, fractions are
// truncated toward zero.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return truncate(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		return truncate(f), err == nil
	}
	return 0, false
}

func truncate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(math.Trunc(f))
}

// coerceInt turns numbers, numeric strings and booleans into an int.
// Anything else becomes 0.
func coerceInt(v any) int {
	if n, ok := asInt(v); ok {
		return n
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(i)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return truncate(f)
	}
	return 0
}

func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatNumber(x)
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// formatNumber prints x the way a JavaScript engine would: plain digits for
// moderate magnitudes, exponent notation for very large or very small ones.
func formatNumber(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	if abs := math.Abs(x); abs == 0 || (abs >= 1e-7 && abs < 1e21) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	out := strconv.FormatFloat(x, 'g', -1, 64)
	out = strings.Replace(out, "e-0", "e-", 1)
	return strings.Replace(out, "e+0", "e+", 1)
}

// truthy: false, 0, "", null and missing are false; everything else is true.
func truthy(v any) bool {
	if f, ok := asNumber(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	return true
}
