package descriptions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseResult is either a StructuredResult or a HeuristicResult.
type ParseResult interface {
	isParseResult()
}

// StructuredResult holds the raw values of a JSON object response.
type StructuredResult struct {
	Fields map[string]json.RawMessage
}

// HeuristicResult holds label/text pairs recovered line by line.
type HeuristicResult struct {
	Fields map[string]string
}

func (StructuredResult) isParseResult() {}
func (HeuristicResult) isParseResult() {}

// Parse tries a strict JSON parse first and falls back to line heuristics.
// An object without any clip label is treated as a stray fragment.
func Parse(content string) ParseResult {
	clean := NormalizeQuotes(content)
	if r, err := ParseStrict(clean); err == nil && r.hasLabel() {
		return r
	}
	return ParseHeuristic(clean)
}

func (r StructuredResult) hasLabel() bool {
	for k := range r.Fields {
		if strings.HasPrefix(strings.TrimSpace(k), LabelPrefix) {
			return true
		}
	}
	return false
}

// ParseStrict accepts a JSON object, optionally wrapped in a markdown fence
// or surrounded by prose.
func ParseStrict(content string) (StructuredResult, error) {
	obj, err := extractJSONObject(content)
	if err != nil {
		return StructuredResult{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return StructuredResult{}, fmt.Errorf("decode description object: %w", err)
	}
	return StructuredResult{Fields: fields}, nil
}

// ParseHeuristic scans lines that start with the label prefix (optionally
// indented or quoted) and splits each on its first colon. Later lines win.
func ParseHeuristic(content string) HeuristicResult {
	out := HeuristicResult{Fields: map[string]string{}}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), `"`)
		if !strings.HasPrefix(line, LabelPrefix) {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"`)
		val = strings.Trim(strings.TrimSpace(val), `",`)
		if key == "" {
			continue
		}
		out.Fields[key] = val
	}
	return out
}

// Normalize turns either result into label -> text. Non-string JSON values
// are kept in compact JSON form; null values are dropped.
func Normalize(r ParseResult) map[string]string {
	out := map[string]string{}
	switch v := r.(type) {
	case StructuredResult:
		for k, raw := range v.Fields {
			key := strings.TrimSpace(k)
			if key == "" {
				continue
			}
			if text, ok := rawText(raw); ok {
				out[key] = text
			}
		}
	case HeuristicResult:
		for k, text := range v.Fields {
			out[k] = text
		}
	}
	return out
}

func rawText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var b bytes.Buffer
	if err := json.Compact(&b, trimmed); err != nil {
		return string(trimmed), true
	}
	return b.String(), true
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", errors.New("no JSON object in content")
}
