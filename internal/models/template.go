package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RuleCategory is a badge category as used by template rules. It is the badge
// category enum plus the "any" sentinel, which matches badges of every
// category.
type RuleCategory string

const (
	// RuleCategoryTechnical matches technical badges only.
	RuleCategoryTechnical RuleCategory = "technical"
	// RuleCategoryOrganizational matches organizational badges only.
	RuleCategoryOrganizational RuleCategory = "organizational"
	// RuleCategorySoftskilled matches softskilled badges only.
	RuleCategorySoftskilled RuleCategory = "softskilled"
	// RuleCategoryAny matches a badge of any category, but only from badges
	// left over after all specific-category rules are allocated.
	RuleCategoryAny RuleCategory = "any"
)

// ValidRuleCategory reports whether c is a known rule category.
func ValidRuleCategory(c RuleCategory) bool {
	switch c {
	case RuleCategoryTechnical, RuleCategoryOrganizational, RuleCategorySoftskilled, RuleCategoryAny:
		return true
	}
	return false
}

// Matches reports whether the rule category accepts a badge of the given category.
func (c RuleCategory) Matches(b BadgeCategory) bool {
	return c == RuleCategoryAny || string(c) == string(b)
}

// TemplateRule is one badge-count requirement of a promotion template.
type TemplateRule struct {
	Category RuleCategory `json:"category"`
	Level    BadgeLevel   `json:"level"`
	Count    int          `json:"count"`
}

// TemplateRules is the rule set of a template, stored as a JSON column and
// validated at the storage boundary rather than trusted as opaque JSON.
type TemplateRules []TemplateRule

// Value implements driver.Valuer for storing rules as JSON.
func (r TemplateRules) Value() (driver.Value, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for loading rules from a JSON column.
func (r *TemplateRules) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan template rules from %T", value)
	}
	var rules TemplateRules
	if err := json.Unmarshal(data, &rules); err != nil {
		return fmt.Errorf("invalid template rules JSON: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	*r = rules
	return nil
}

// Validate checks every rule against the closed category/level enums.
func (r TemplateRules) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("template must declare at least one rule")
	}
	for i, rule := range r {
		if !ValidRuleCategory(rule.Category) {
			return fmt.Errorf("rule %d: unknown category %q", i, rule.Category)
		}
		if !ValidBadgeLevel(rule.Level) {
			return fmt.Errorf("rule %d: unknown level %q", i, rule.Level)
		}
		if rule.Count <= 0 {
			return fmt.Errorf("rule %d: count must be positive", i)
		}
	}
	return nil
}

// PromotionTemplate defines the badge requirements for moving between two
// levels of a career path. Rules are immutable once the template is active;
// the engine reads them as a snapshot at evaluation time.
type PromotionTemplate struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Path            CareerPath    `gorm:"type:varchar(20);not null;index" json:"path"`
	FromLevel       string        `gorm:"size:40;not null" json:"from_level"`
	ToLevel         string        `gorm:"size:40;not null" json:"to_level"`
	Rules           TemplateRules `gorm:"type:jsonb;not null" json:"rules"`
	IsActive        bool          `gorm:"not null;default:false;index" json:"is_active"`
	CreatedByUserID *uint         `json:"created_by_user_id"`
	CreatedByUser   *User         `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
