package services

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
)

// Segment type constants
const (
	SegmentTypeField    = "field"
	SegmentTypeSequence = "sequence"
)

// Defaults applied when a config omits a value
const (
	DefaultSeparator      = "-"
	DefaultSequenceLength = 4
	DefaultSequenceStart  = 1
)

// FlexID is a field identifier that accepts both JSON strings and
// numbers ("10" and 10), since stored configs mix the two.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = FlexID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*f = FlexID(num.String())
	return nil
}

// String returns the id as a plain string
func (f FlexID) String() string {
	return string(f)
}

// TagSegment is one atomic piece of a composed tag: either a rendered
// field value or a numeric sequence. The variant is selected by Type.
type TagSegment struct {
	Type string `json:"type"`

	// Field segment
	FieldID            FlexID `json:"field_id,omitempty"`
	HierarchyLevelName string `json:"hierarchy_level_name,omitempty"`
	MaxLength          int    `json:"max_length,omitempty"`
	StaticValue        string `json:"static_value,omitempty"`

	// Sequence segment
	Length int `json:"length,omitempty"`
	Start  int `json:"start,omitempty"`
}

// TagConfig is the declarative per-form configuration for building the
// primary asset tag
type TagConfig struct {
	Enabled   bool         `json:"enabled"`
	Separator string       `json:"separator"`
	Segments  []TagSegment `json:"segments"`
}

// TagGroupConfig extends TagConfig for the class-scoped group tag. The
// legacy (segment-less) fields describe older stored configs that
// predate the segment list.
type TagGroupConfig struct {
	TagConfig

	ClassFieldID            FlexID `json:"class_field_id,omitempty"`
	ClassHierarchyLevelName string `json:"class_hierarchy_level_name,omitempty"`

	// Legacy segment-less configuration
	FieldID        FlexID `json:"field_id,omitempty"`
	StaticValue    string `json:"static_value,omitempty"`
	UseSequence    bool   `json:"use_sequence,omitempty"`
	SequenceLength int    `json:"sequence_length,omitempty"`
}

// ParseTagConfig normalizes a stored tag configuration into a typed
// TagConfig. The raw value may be a JSON string, an already decoded
// object, or nil. Malformed input never fails: it yields nil, which
// callers treat as "no configuration" (legacy tag scheme applies).
func ParseTagConfig(raw interface{}) *TagConfig {
	data, ok := configBytes(raw)
	if !ok {
		return nil
	}

	var cfg TagConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("[WARNING] Ignoring malformed tag config: %v", err)
		return nil
	}

	applyTagConfigDefaults(&cfg)
	return &cfg
}

// ParseTagGroupConfig normalizes a stored group-tag configuration.
// Same tolerance rules as ParseTagConfig.
func ParseTagGroupConfig(raw interface{}) *TagGroupConfig {
	data, ok := configBytes(raw)
	if !ok {
		return nil
	}

	var cfg TagGroupConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("[WARNING] Ignoring malformed tag group config: %v", err)
		return nil
	}

	applyTagConfigDefaults(&cfg.TagConfig)
	if cfg.SequenceLength <= 0 {
		cfg.SequenceLength = DefaultSequenceLength
	}
	return &cfg
}

// configBytes converts the supported raw shapes to JSON bytes
func configBytes(raw interface{}) ([]byte, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		return []byte(trimmed), true
	case *string:
		if v == nil {
			return nil, false
		}
		return configBytes(*v)
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	default:
		// Already decoded object: round-trip through JSON
		data, err := json.Marshal(v)
		if err != nil {
			log.Printf("[WARNING] Ignoring unencodable tag config (%T): %v", raw, err)
			return nil, false
		}
		return data, true
	}
}

func applyTagConfigDefaults(cfg *TagConfig) {
	if cfg.Separator == "" {
		cfg.Separator = DefaultSeparator
	}
	for i := range cfg.Segments {
		seg := &cfg.Segments[i]
		if seg.Type == SegmentTypeSequence {
			if seg.Length <= 0 {
				seg.Length = DefaultSequenceLength
			}
			if seg.Start <= 0 {
				seg.Start = DefaultSequenceStart
			}
		}
	}
}

// formatSequence zero-pads a sequence value to the configured length.
// Values wider than the length keep all their digits.
func formatSequence(value, length int) string {
	s := strconv.Itoa(value)
	for len(s) < length {
		s = "0" + s
	}
	return s
}
