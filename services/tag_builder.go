package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

// Legacy scheme constants
const (
	legacyCategoryCodeMax = 8
	legacyLocationCodeMax = 3
	legacySequenceLength  = 3
	legacyCategoryDefault = "CAT"
	legacyLocationDefault = "LOC"
	legacyChunkFallback   = "GEN"
)

// classLevelName is the hierarchy level scanned for when a group-tag
// config names no class field
const classLevelName = "Asset Class"

var trailingLegacySequence = regexp.MustCompile(`(\d{1,6})$`)

// TagBuilder composes asset tags and group tags from the per-form
// configuration, the submitted form answers, and the allocator's view
// of previously generated identifiers.
type TagBuilder struct {
	db        *gorm.DB
	allocator *SequenceAllocator
}

// NewTagBuilder returns a builder using the default allocator windows
func NewTagBuilder(db *gorm.DB) *TagBuilder {
	return &TagBuilder{db: db, allocator: NewSequenceAllocator(db)}
}

// NewTagBuilderWithAllocator returns a builder with a caller-supplied
// allocator (used by tests to shrink scan windows)
func NewTagBuilderWithAllocator(db *gorm.DB, allocator *SequenceAllocator) *TagBuilder {
	return &TagBuilder{db: db, allocator: allocator}
}

// GenerateAssetTag builds the primary asset tag. An asset that already
// carries a tag keeps it unless force is set (the retry loop forces
// regeneration after a uniqueness conflict). sequenceOffset shifts any
// allocated sequence value so retries produce a different candidate.
func (b *TagBuilder) GenerateAssetTag(asset *models.Asset, responses map[string]interface{}, cfg *TagConfig, sequenceOffset int, force bool) (string, error) {
	if !force && asset.AssetTag != nil && *asset.AssetTag != "" {
		return *asset.AssetTag, nil
	}

	if cfg != nil && cfg.Enabled && len(cfg.Segments) > 0 {
		parts, _, err := b.renderSegments(cfg, responses, sequenceOffset, "", nil)
		if err != nil {
			return "", err
		}
		return strings.Join(parts, cfg.Separator), nil
	}

	return b.generateLegacyTag(asset, sequenceOffset)
}

// GenerateAssetTagGroup builds the class-scoped group tag. Returns ""
// when group tagging is disabled for the form.
func (b *TagBuilder) GenerateAssetTagGroup(asset *models.Asset, responses map[string]interface{}, cfg *TagGroupConfig, sequenceOffset int, force bool) (string, error) {
	if cfg == nil || !cfg.Enabled {
		return "", nil
	}
	if !force && asset.AssetTagGroup != nil && *asset.AssetTagGroup != "" {
		return *asset.AssetTagGroup, nil
	}

	identity, classToken, err := b.resolveGroupClass(asset, responses, cfg)
	if err != nil {
		return "", err
	}

	// Category/class consistency: an explicitly supplied category must
	// belong to the explicitly resolved class
	if identity.ClassID != nil && asset.CategoryID != nil {
		catIdentity, err := ResolveCategoryClass(b.db, *asset.CategoryID)
		if err != nil {
			return "", err
		}
		if catIdentity.ClassID != nil && *catIdentity.ClassID != *identity.ClassID {
			return "", generationErrorf("category %d does not belong to class %d", *asset.CategoryID, *identity.ClassID)
		}
	}

	if len(cfg.Segments) > 0 {
		scope := SequenceScope{ClassToken: classToken, ClassID: identity.ClassID}
		parts, _, err := b.renderGroupSegments(cfg, responses, sequenceOffset, scope)
		if err != nil {
			return "", err
		}
		return strings.Join(parts, cfg.Separator), nil
	}

	return b.generateLegacyGroupTag(cfg, responses, identity, classToken, sequenceOffset)
}

// renderSegments walks the segment list for the primary tag. Field
// segments must resolve to a non-empty value unless a static fallback
// is configured; unknown segment types are skipped with a warning.
func (b *TagBuilder) renderSegments(cfg *TagConfig, responses map[string]interface{}, sequenceOffset int, classToken string, scope *SequenceScope) ([]string, string, error) {
	var parts []string

	for _, seg := range cfg.Segments {
		switch seg.Type {
		case SegmentTypeField:
			value := ResolveFieldValue(responses, seg.FieldID.String(), seg.HierarchyLevelName)
			if IsEmptyValue(value) {
				if seg.StaticValue == "" {
					return nil, "", generationErrorf("field %s has no value and no static fallback", seg.FieldID)
				}
				value = seg.StaticValue
			}
			chunk := RenderChunk(value, seg.MaxLength)
			if chunk == "" {
				continue
			}
			if classToken == "" && strings.EqualFold(seg.HierarchyLevelName, classLevelName) {
				classToken = chunk
			}
			parts = append(parts, chunk)

		case SegmentTypeSequence:
			prefix := strings.Join(parts, cfg.Separator)
			var next int
			var err error
			if scope != nil {
				scoped := *scope
				if scoped.ClassToken == "" {
					scoped.ClassToken = classToken
				}
				next, err = b.allocator.NextGroupSequence(prefix, cfg.Separator, seg.Start, scoped)
			} else {
				next, err = b.allocator.NextTagSequence(prefix, cfg.Separator, seg.Start)
			}
			if err != nil {
				return nil, "", err
			}
			parts = append(parts, formatSequence(next+sequenceOffset, seg.Length))

		default:
			log.Printf("[WARNING] Skipping unknown tag segment type %q", seg.Type)
		}
	}

	if len(parts) == 0 {
		return nil, "", generationErrorf("tag configuration rendered no usable segments")
	}
	return parts, classToken, nil
}

// renderGroupSegments renders segments for the group tag, remembering
// the chunk of whichever segment represents the class so sequencing can
// scope on it
func (b *TagBuilder) renderGroupSegments(cfg *TagGroupConfig, responses map[string]interface{}, sequenceOffset int, scope SequenceScope) ([]string, string, error) {
	// Pre-render the class token from the configured class field so the
	// sequence scope sees it even when the class segment comes after the
	// sequence segment. The token is the chunk the class segment itself
	// produces (same truncation), so a generated tag matches its own scope.
	classToken := ""
	if cfg.ClassFieldID != "" {
		value := ResolveFieldValue(responses, cfg.ClassFieldID.String(), cfg.ClassHierarchyLevelName)
		if !IsEmptyValue(value) {
			maxLen := 0
			for _, seg := range cfg.Segments {
				if seg.Type == SegmentTypeField && seg.FieldID == cfg.ClassFieldID {
					maxLen = seg.MaxLength
					break
				}
			}
			classToken = RenderChunk(value, maxLen)
		}
	}
	if classToken == "" {
		classToken = scope.ClassToken
	}
	scope.ClassToken = classToken

	return b.renderSegments(&cfg.TagConfig, responses, sequenceOffset, classToken, &scope)
}

// resolveGroupClass determines the class identity for a group tag:
// an explicitly configured class field is mandatory when present;
// otherwise the asset category's class applies, then a segment scan
// for an "Asset Class" hierarchy level.
func (b *TagBuilder) resolveGroupClass(asset *models.Asset, responses map[string]interface{}, cfg *TagGroupConfig) (ClassIdentity, string, error) {
	if cfg.ClassFieldID != "" {
		value := ResolveFieldValue(responses, cfg.ClassFieldID.String(), cfg.ClassHierarchyLevelName)
		if IsEmptyValue(value) {
			return ClassIdentity{}, "", generationErrorf("group tag requires a value for class field %s", cfg.ClassFieldID)
		}
		identity, err := ResolveAssetClass(b.db, value)
		if err != nil {
			return ClassIdentity{}, "", err
		}
		return identity, RenderChunk(value, 0), nil
	}

	if asset.CategoryID != nil {
		identity, err := ResolveCategoryClass(b.db, *asset.CategoryID)
		if err != nil {
			return ClassIdentity{}, "", err
		}
		if identity.ClassID != nil {
			return identity, "", nil
		}
	}

	for _, seg := range cfg.Segments {
		if seg.Type != SegmentTypeField || !strings.EqualFold(seg.HierarchyLevelName, classLevelName) {
			continue
		}
		value := ResolveFieldValue(responses, seg.FieldID.String(), seg.HierarchyLevelName)
		if IsEmptyValue(value) {
			continue
		}
		identity, err := ResolveAssetClass(b.db, value)
		if err != nil {
			return ClassIdentity{}, "", err
		}
		return identity, RenderChunk(value, 0), nil
	}

	return ClassIdentity{}, "", nil
}

// generateLegacyTag composes LOCATION-CATEGORY-SEQ for forms without a
// declarative configuration
func (b *TagBuilder) generateLegacyTag(asset *models.Asset, sequenceOffset int) (string, error) {
	categoryCode := legacyCategoryDefault
	if asset.CategoryID != nil {
		var category models.AssetCategory
		err := b.db.First(&category, "id = ?", *asset.CategoryID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to fetch category for legacy tag: %w", err)
		}
		if err == nil {
			categoryCode = RenderCodeChunk(category.Name, legacyCategoryCodeMax, legacyChunkFallback)
		}
	}

	locationCode := legacyLocationDefault
	if strings.TrimSpace(asset.AssetLocation) != "" {
		locationCode = RenderCodeChunk(asset.AssetLocation, legacyLocationCodeMax, legacyChunkFallback)
	}

	sequence, err := b.nextLegacySequence(asset.CategoryID)
	if err != nil {
		return "", err
	}
	sequence += sequenceOffset

	return fmt.Sprintf("%s-%s-%s", locationCode, categoryCode, formatSequence(sequence, legacySequenceLength)), nil
}

// nextLegacySequence scans existing tags of the category and parses the
// trailing digit run
func (b *TagBuilder) nextLegacySequence(categoryID *uint) (int, error) {
	query := b.db.Model(&models.Asset{}).
		Where("asset_tag IS NOT NULL").
		Order("created_at DESC").
		Limit(b.allocator.PrefixWindow)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var tags []string
	if err := query.Pluck("asset_tag", &tags).Error; err != nil {
		return 0, fmt.Errorf("failed to scan category tags: %w", err)
	}

	max := 0
	for _, tag := range tags {
		m := trailingLegacySequence.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

// generateLegacyGroupTag handles segment-less group configs: optional
// field chunk, optional static token, optional sequence
func (b *TagBuilder) generateLegacyGroupTag(cfg *TagGroupConfig, responses map[string]interface{}, identity ClassIdentity, classToken string, sequenceOffset int) (string, error) {
	var parts []string

	if cfg.FieldID != "" {
		value := ResolveFieldValue(responses, cfg.FieldID.String(), "")
		if chunk := RenderChunk(value, 0); chunk != "" {
			parts = append(parts, chunk)
		}
	}

	if cfg.StaticValue != "" {
		if chunk := RenderChunk(cfg.StaticValue, 0); chunk != "" {
			if classToken == "" {
				classToken = chunk
			}
			parts = append(parts, chunk)
		}
	}

	if cfg.UseSequence {
		prefix := strings.Join(parts, cfg.Separator)
		scope := SequenceScope{ClassToken: classToken, ClassID: identity.ClassID}
		next, err := b.allocator.NextGroupSequence(prefix, cfg.Separator, DefaultSequenceStart, scope)
		if err != nil {
			return "", err
		}
		parts = append(parts, formatSequence(next+sequenceOffset, cfg.SequenceLength))
	}

	return strings.Join(parts, cfg.Separator), nil
}
