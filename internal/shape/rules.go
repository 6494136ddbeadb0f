package shape

import (
	"encoding/json"
	"strconv"
	"strings"
)

// #region rule-types

// AssertionRule locates assertion text at one known payload position.
// Rules are evaluated top-to-bottom; the first hit wins, which keeps the
// precedence between alternate peer payload shapes auditable in one place.
type AssertionRule struct {
	Name    string
	Extract func(payload map[string]any) (string, bool)
}

// ConfidenceRule locates a confidence number at one known payload position.
type ConfidenceRule struct {
	Name    string
	Extract func(payload map[string]any) (float64, bool)
}

// #endregion rule-types

// #region rule-tables

// AssertionRules is the ordered search table for assertion text.
var AssertionRules = []AssertionRule{
	{"assertion", topLevelString("assertion")},
	{"final_verdict.status", nestedString("final_verdict", "status")},
	{"final_verdict.verdict", nestedString("final_verdict", "verdict")},
	{"final_verdict.decision", nestedString("final_verdict", "decision")},
	{"verdict", topLevelString("verdict")},
	{"status", topLevelString("status")},
	{"response", topLevelString("response")},
}

// ConfidenceRules is the ordered search table for the confidence value.
var ConfidenceRules = []ConfidenceRule{
	{"confidence", topLevelNumber("confidence")},
	{"final_verdict.inevitability", nestedNumber("final_verdict", "inevitability")},
	{"final_verdict.confidence", nestedNumber("final_verdict", "confidence")},
	{"final_verdict.probability", nestedNumber("final_verdict", "probability")},
	{"final_verdict.meta.confidence", deepNumber("final_verdict", "meta", "confidence")},
}

// #endregion rule-tables

// #region rule-eval

// FindAssertion runs the assertion table and returns the text plus the name
// of the rule that matched.
func FindAssertion(payload map[string]any) (string, string, bool) {
	for _, rule := range AssertionRules {
		if text, ok := rule.Extract(payload); ok {
			return text, rule.Name, true
		}
	}
	return "", "", false
}

// FindConfidence runs the confidence table and returns the raw (unclamped)
// number plus the name of the rule that matched.
func FindConfidence(payload map[string]any) (float64, string, bool) {
	for _, rule := range ConfidenceRules {
		if num, ok := rule.Extract(payload); ok {
			return num, rule.Name, true
		}
	}
	return 0, "", false
}

// #endregion rule-eval

// #region extractors

func topLevelString(key string) func(map[string]any) (string, bool) {
	return func(payload map[string]any) (string, bool) {
		return coerceString(payload[key])
	}
}

func nestedString(outer, key string) func(map[string]any) (string, bool) {
	return func(payload map[string]any) (string, bool) {
		inner, ok := payload[outer].(map[string]any)
		if !ok {
			return "", false
		}
		return coerceString(inner[key])
	}
}

func topLevelNumber(key string) func(map[string]any) (float64, bool) {
	return func(payload map[string]any) (float64, bool) {
		return coerceNumber(payload[key])
	}
}

func nestedNumber(outer, key string) func(map[string]any) (float64, bool) {
	return func(payload map[string]any) (float64, bool) {
		inner, ok := payload[outer].(map[string]any)
		if !ok {
			return 0, false
		}
		return coerceNumber(inner[key])
	}
}

func deepNumber(outer, mid, key string) func(map[string]any) (float64, bool) {
	return func(payload map[string]any) (float64, bool) {
		level1, ok := payload[outer].(map[string]any)
		if !ok {
			return 0, false
		}
		level2, ok := level1[mid].(map[string]any)
		if !ok {
			return 0, false
		}
		return coerceNumber(level2[key])
	}
}

// #endregion extractors

// #region coercion

// coerceString accepts only non-empty trimmed strings. It never converts
// other types: an assertion that is not text is not an assertion.
func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// coerceNumber accepts JSON numbers in any of the forms a decoded payload
// can carry them: float64, json.Number, integer types, or a numeric string.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// #endregion coercion
