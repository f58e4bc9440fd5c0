package domain

import "fmt"

// Category is the processing tier assigned to a file by line count.
type Category string

const (
	// CategoryNormal files are processed without remark.
	CategoryNormal Category = "normal"

	// CategoryLarge files are processed with a warning signal.
	CategoryLarge Category = "large"

	// CategoryPotentialGod files are processed with a review signal.
	CategoryPotentialGod Category = "potential_god"

	// CategoryRejected files are never parsed.
	CategoryRejected Category = "rejected"
)

// Categories lists all tiers, for accounting maps.
var Categories = []Category{CategoryNormal, CategoryLarge, CategoryPotentialGod, CategoryRejected}

// CategoryLimits holds the externally configured line thresholds.
// SoftCap < GodThreshold < HardCap is required.
type CategoryLimits struct {
	SoftCap      int
	GodThreshold int
	HardCap      int
}

// DefaultCategoryLimits mirrors the stock thresholds.
func DefaultCategoryLimits() CategoryLimits {
	return CategoryLimits{SoftCap: 1500, GodThreshold: 4000, HardCap: 5000}
}

// Validate checks the ordering invariant.
func (l CategoryLimits) Validate() error {
	if l.SoftCap < 1 {
		return fmt.Errorf("%w: soft cap must be positive", ErrInvalidInput)
	}
	if !(l.SoftCap < l.GodThreshold && l.GodThreshold < l.HardCap) {
		return fmt.Errorf("%w: need soft_cap < god_threshold < hard_cap, got %d/%d/%d",
			ErrInvalidInput, l.SoftCap, l.GodThreshold, l.HardCap)
	}
	return nil
}

// Categorize assigns the processing tier for a file with the given line
// count. Pure and deterministic; boundaries are inclusive on the upper
// tier (exactly SoftCap lines is large, exactly HardCap is rejected).
func Categorize(lines int, l CategoryLimits) Category {
	switch {
	case lines >= l.HardCap:
		return CategoryRejected
	case lines >= l.GodThreshold:
		return CategoryPotentialGod
	case lines >= l.SoftCap:
		return CategoryLarge
	default:
		return CategoryNormal
	}
}
