package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips all HTML from free-text form answers
var strictPolicy = bluemonday.StrictPolicy()

// HierarchicalSelection is a multi-level form answer (e.g.
// building -> floor -> room). Selections keeps the raw per-level keys;
// Resolved carries the human-readable entries in level order.
type HierarchicalSelection struct {
	Selections map[string]interface{}
	Resolved   []ResolvedLevel
}

// ResolvedLevel is one resolved entry of a hierarchical selection
type ResolvedLevel struct {
	Level string
	ID    interface{}
	Label interface{}
	Value interface{}
}

// AsHierarchicalSelection detects a hierarchical-selection answer in its
// decoded JSON shape. Returns nil when the value is not one.
func AsHierarchicalSelection(value interface{}) *HierarchicalSelection {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}

	_, hasSelections := m["selections"]
	_, hasResolved := m["resolved"]
	if !hasSelections && !hasResolved {
		return nil
	}

	sel := &HierarchicalSelection{}
	if s, ok := m["selections"].(map[string]interface{}); ok {
		sel.Selections = s
	}
	if list, ok := m["resolved"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			level := ""
			if l, ok := entry["level"].(string); ok {
				level = l
			}
			sel.Resolved = append(sel.Resolved, ResolvedLevel{
				Level: level,
				ID:    entry["id"],
				Label: entry["label"],
				Value: entry["value"],
			})
		}
	}
	return sel
}

// ResolveFieldValue looks up the answer for a field and, when a
// hierarchy level name is given, narrows a multi-level answer down to
// that level. Returns nil when the field has no answer at all.
func ResolveFieldValue(responses map[string]interface{}, fieldID string, hierarchyLevelName string) interface{} {
	if responses == nil {
		return nil
	}
	value, ok := responses[fieldID]
	if !ok {
		return nil
	}

	if hierarchyLevelName == "" {
		return value
	}

	if sel := AsHierarchicalSelection(value); sel != nil && len(sel.Resolved) > 0 {
		for _, entry := range sel.Resolved {
			if !strings.EqualFold(entry.Level, hierarchyLevelName) {
				continue
			}
			if entry.ID != nil {
				return entry.ID
			}
			if entry.Label != nil {
				return entry.Label
			}
			return entry.Value
		}
		// Level not present in the resolved list
		return nil
	}

	if m, ok := value.(map[string]interface{}); ok {
		candidates := []string{
			hierarchyLevelName,
			strings.ToLower(hierarchyLevelName),
			strings.ReplaceAll(hierarchyLevelName, " ", "_"),
			strings.ToLower(strings.ReplaceAll(hierarchyLevelName, " ", "_")),
		}
		for _, key := range candidates {
			if v, ok := m[key]; ok {
				return v
			}
		}
		// No level key matched; hand the whole object back
		return value
	}

	return value
}

// StringifyValue renders any form answer to a single display string.
// Arrays join their rendered elements with ", "; hierarchical
// selections join their resolved labels with " / "; other objects
// render their values recursively; scalars stringify directly.
func StringifyValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if rendered := StringifyValue(item); rendered != "" {
				parts = append(parts, rendered)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		if sel := AsHierarchicalSelection(v); sel != nil {
			return stringifyHierarchical(sel)
		}
		return stringifyObjectValues(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func stringifyHierarchical(sel *HierarchicalSelection) string {
	if len(sel.Resolved) > 0 {
		parts := make([]string, 0, len(sel.Resolved))
		for _, entry := range sel.Resolved {
			label := entry.Label
			if label == nil {
				label = entry.Value
			}
			if rendered := StringifyValue(label); rendered != "" {
				parts = append(parts, rendered)
			}
		}
		return strings.Join(parts, " / ")
	}
	if sel.Selections != nil {
		return stringifyObjectValues(sel.Selections)
	}
	return ""
}

// stringifyObjectValues renders a plain object by its values, in key
// order so output is deterministic
func stringifyObjectValues(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if rendered := StringifyValue(m[k]); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmptyValue reports whether a form answer carries no usable content
func IsEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		for _, item := range v {
			if !IsEmptyValue(item) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, item := range v {
			if !IsEmptyValue(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SanitizeResponses strips HTML from free-text answers in place-safe
// fashion, returning a new map. Nested lists and objects are walked
// recursively.
func SanitizeResponses(responses map[string]interface{}) map[string]interface{} {
	if responses == nil {
		return nil
	}
	clean := make(map[string]interface{}, len(responses))
	for k, v := range responses {
		clean[k] = sanitizeValue(v)
	}
	return clean
}

func sanitizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strictPolicy.Sanitize(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = sanitizeValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = sanitizeValue(item)
		}
		return out
	default:
		return value
	}
}
