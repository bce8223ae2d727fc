package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTagConfig(t *testing.T) {
	raw := `{"enabled": true, "segments": [{"type": "field", "field_id": 10, "max_length": 3}, {"type": "sequence"}]}`

	cfg := ParseTagConfig(raw)
	assert.NotNil(t, cfg)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "-", cfg.Separator)
	assert.Len(t, cfg.Segments, 2)

	// Numeric field ids normalize to strings
	assert.Equal(t, "10", cfg.Segments[0].FieldID.String())
	assert.Equal(t, 3, cfg.Segments[0].MaxLength)

	// Sequence defaults
	assert.Equal(t, DefaultSequenceLength, cfg.Segments[1].Length)
	assert.Equal(t, DefaultSequenceStart, cfg.Segments[1].Start)
}

func TestParseTagConfigStringFieldID(t *testing.T) {
	raw := `{"enabled": true, "separator": "/", "segments": [{"type": "field", "field_id": "loc", "hierarchy_level_name": "Building"}]}`

	cfg := ParseTagConfig(raw)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/", cfg.Separator)
	assert.Equal(t, "loc", cfg.Segments[0].FieldID.String())
	assert.Equal(t, "Building", cfg.Segments[0].HierarchyLevelName)
}

func TestParseTagConfigTolerance(t *testing.T) {
	assert.Nil(t, ParseTagConfig(nil))
	assert.Nil(t, ParseTagConfig(""))
	assert.Nil(t, ParseTagConfig("   "))
	assert.Nil(t, ParseTagConfig("{not json"))
	assert.Nil(t, ParseTagConfig((*string)(nil)))

	// Pointer to a valid document works
	raw := `{"enabled": false}`
	cfg := ParseTagConfig(&raw)
	assert.NotNil(t, cfg)
	assert.False(t, cfg.Enabled)
}

func TestParseTagConfigDecodedObject(t *testing.T) {
	cfg := ParseTagConfig(map[string]interface{}{
		"enabled":  true,
		"segments": []interface{}{map[string]interface{}{"type": "sequence", "length": 5}},
	})
	assert.NotNil(t, cfg)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.Segments[0].Length)
	assert.Equal(t, DefaultSequenceStart, cfg.Segments[0].Start)
}

func TestParseTagGroupConfig(t *testing.T) {
	raw := `{"enabled": true, "class_field_id": 7, "static_value": "EQ", "use_sequence": true}`

	cfg := ParseTagGroupConfig(raw)
	assert.NotNil(t, cfg)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "7", cfg.ClassFieldID.String())
	assert.Equal(t, "EQ", cfg.StaticValue)
	assert.True(t, cfg.UseSequence)
	assert.Equal(t, DefaultSequenceLength, cfg.SequenceLength)

	assert.Nil(t, ParseTagGroupConfig("not json"))
}

func TestFormatSequence(t *testing.T) {
	assert.Equal(t, "0001", formatSequence(1, 4))
	assert.Equal(t, "042", formatSequence(42, 3))
	assert.Equal(t, "1234", formatSequence(1234, 4))

	// Values wider than the configured length keep all digits
	assert.Equal(t, "12345", formatSequence(12345, 4))
}
