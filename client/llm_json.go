package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeItems reads line items from a model answer. The list may sit under
// "items", be the whole document, or be the first non-empty list value of
// the top-level object, checked in key order. Missing numbers decode as zero.
func decodeItems(raw string) ([]dto.CandidateItem, error) {
	raw = stripCodeFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("bad JSON: %w", err)
	}

	var list []any
	switch v := doc.(type) {
	case []any:
		list = v
	case map[string]any:
		if items, ok := v["items"].([]any); ok {
			list = items
			break
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if l, ok := v[k].([]any); ok && len(l) > 0 {
				list = l
				break
			}
		}
	}

	out := make([]dto.CandidateItem, 0, len(list))
	for _, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, dto.CandidateItem{
			Item:      strings.TrimSpace(stringField(obj, "item", "description", "name")),
			Qty:       numberField(obj, "qty", "quantity"),
			UnitPrice: numberField(obj, "unit_price", "price", "rate"),
			Total:     numberField(obj, "total", "amount"),
		})
	}
	return out, nil
}

// decodeSuggestions reads a description -> {hsn_code, gst_rate} object.
func decodeSuggestions(raw string) (map[string]dto.HsnSuggestion, error) {
	raw = stripCodeFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("bad JSON: %w", err)
	}

	out := make(map[string]dto.HsnSuggestion, len(doc))
	for desc, val := range doc {
		obj, ok := val.(map[string]any)
		if !ok {
			continue
		}
		s := dto.HsnSuggestion{HSNCode: strings.TrimSpace(stringField(obj, "hsn_code", "hsn"))}
		if _, present := obj["gst_rate"]; present {
			if r, ok := toNumber(obj["gst_rate"]); ok {
				s.GSTRate = &r
			}
		}
		out[desc] = s
	}
	return out, nil
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func numberField(obj map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if n, ok := toNumber(obj[k]); ok {
			return n
		}
	}
	return 0
}

// toNumber accepts JSON numbers and numeric strings such as "1,200.50"
// or "18%".
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimLeft(s, "₹$ ")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
