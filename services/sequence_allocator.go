package services

import (
	"fmt"
	"regexp"
	"strconv"

	"asset_manager_go/models"

	"gorm.io/gorm"
)

// Default scan window sizes. The allocator only inspects a bounded
// window of the most recently created rows; true uniqueness is enforced
// by the database constraint and the creation retry loop.
const (
	DefaultPrefixScanWindow = 200
	DefaultClassScanWindow  = 500
)

// SequenceScope narrows group-tag sequencing to an asset class, either
// by the rendered class token inside the tag or by the class id of the
// asset's category. Zero value means prefix-scoped.
type SequenceScope struct {
	ClassToken string
	ClassID    *uint
}

// SequenceAllocator computes the next value of a scoped numeric
// sequence by inspecting previously generated identifiers. It performs
// no locking: two concurrent creations in the same scope can compute
// the same value, which the uniqueness constraint then rejects.
type SequenceAllocator struct {
	DB *gorm.DB

	// Scan window sizes, overridable in tests
	PrefixWindow int
	ClassWindow  int
}

// NewSequenceAllocator returns an allocator with the default windows
func NewSequenceAllocator(db *gorm.DB) *SequenceAllocator {
	return &SequenceAllocator{
		DB:           db,
		PrefixWindow: DefaultPrefixScanWindow,
		ClassWindow:  DefaultClassScanWindow,
	}
}

// NextTagSequence returns the next sequence value for the primary asset
// tag within the given prefix scope. The returned value is never below
// start.
func (a *SequenceAllocator) NextTagSequence(prefix, separator string, start int) (int, error) {
	tags, err := a.recentValues("asset_tag", prefix, separator, nil)
	if err != nil {
		return 0, err
	}
	return nextFromLeadingRuns(tags, prefix, separator, start), nil
}

// NextGroupSequence returns the next sequence value for the group tag.
// With a known class token the scan matches the token as a delimited
// segment anywhere in existing group tags and reads the trailing digit
// run; with only a class id it scopes the prefix scan to assets whose
// category belongs to that class; otherwise it behaves like the prefix
// scan.
func (a *SequenceAllocator) NextGroupSequence(prefix, separator string, start int, scope SequenceScope) (int, error) {
	if scope.ClassToken != "" {
		values, err := a.recentTokenValues(scope.ClassToken)
		if err != nil {
			return 0, err
		}
		return nextFromTrailingRuns(values, scope.ClassToken, separator, start), nil
	}

	values, err := a.recentValues("asset_tag_group", prefix, separator, scope.ClassID)
	if err != nil {
		return 0, err
	}
	return nextFromLeadingRuns(values, prefix, separator, start), nil
}

// recentValues fetches the bounded window of most recently created
// identifiers matching prefix+separator, optionally restricted to a
// category class.
func (a *SequenceAllocator) recentValues(column, prefix, separator string, classID *uint) ([]string, error) {
	query := a.DB.Model(&models.Asset{}).
		Where(column + " IS NOT NULL").
		Order("assets.created_at DESC").
		Limit(a.PrefixWindow)

	if prefix != "" {
		query = query.Where(column+" LIKE ?", prefix+separator+"%")
	}
	if classID != nil {
		query = query.
			Joins("JOIN asset_categories ON asset_categories.id = assets.category_id").
			Where("asset_categories.class_id = ?", *classID)
	}

	var values []string
	if err := query.Pluck(column, &values).Error; err != nil {
		return nil, fmt.Errorf("failed to scan recent identifiers: %w", err)
	}
	return values, nil
}

// recentTokenValues fetches recent group tags containing the class
// token anywhere in the value
func (a *SequenceAllocator) recentTokenValues(token string) ([]string, error) {
	var values []string
	err := a.DB.Model(&models.Asset{}).
		Where("asset_tag_group LIKE ?", "%"+token+"%").
		Order("created_at DESC").
		Limit(a.ClassWindow).
		Pluck("asset_tag_group", &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan group identifiers: %w", err)
	}
	return values, nil
}

// nextFromLeadingRuns extracts the digit run immediately following the
// prefix from each value and returns max+1, floored at start
func nextFromLeadingRuns(values []string, prefix, separator string, start int) int {
	pattern := `^(\d+)`
	if prefix != "" {
		pattern = "^" + regexp.QuoteMeta(prefix+separator) + `(\d+)`
	}
	re := regexp.MustCompile(pattern)

	max := start - 1
	for _, value := range values {
		m := re.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// nextFromTrailingRuns considers only values where the token appears as
// a delimited segment, extracts the trailing digit run, and returns
// max+1, floored at start
func nextFromTrailingRuns(values []string, token, separator string, start int) int {
	delimited := regexp.MustCompile(
		`(^|` + regexp.QuoteMeta(separator) + `)` +
			regexp.QuoteMeta(token) +
			`(` + regexp.QuoteMeta(separator) + `|$)`)
	trailing := regexp.MustCompile(`(\d+)$`)

	max := start - 1
	for _, value := range values {
		if !delimited.MatchString(value) {
			continue
		}
		m := trailing.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}
