// Package service provides the application's business logic: the badge
// reservation ledger, the eligibility evaluator, and the promotion lifecycle.
package service

import (
	"laurel/internal/models"
)

// ReservedBadge is the evaluator's view of one reserved badge application:
// just its catalog category and level.
type ReservedBadge struct {
	BadgeApplicationID uint
	Category           models.BadgeCategory
	Level              models.BadgeLevel
}

// Evaluate checks a set of reserved badges against a template's rules and
// reports per-rule satisfaction plus overall readiness. It is pure and
// side-effect free; callers recompute it on demand because reservations can
// change between calls.
//
// Each badge can satisfy at most one rule, so this is an allocation, not a
// count. Specific-category rules are evaluated first, in declaration order,
// each drawing from the pool of not-yet-allocated badges; "any" rules run
// last against whatever remains. A surplus badge left over by a specific rule
// (more matches than the rule needs) stays in the pool and may be claimed by
// a later "any" rule of the same level. Level matching is exact in all cases:
// gold, silver, and bronze are incomparable tags, not an ordered scale.
func Evaluate(rules models.TemplateRules, badges []ReservedBadge) models.EvaluationResult {
	results := make([]models.RuleResult, len(rules))
	allocated := make([]bool, len(badges))

	evalRule := func(i int, rule models.TemplateRule) {
		matched := 0
		claimed := 0
		for j, badge := range badges {
			if allocated[j] {
				continue
			}
			if badge.Level != rule.Level || !rule.Category.Matches(badge.Category) {
				continue
			}
			matched++
			if claimed < rule.Count {
				allocated[j] = true
				claimed++
			}
		}
		results[i] = models.RuleResult{
			Category:       rule.Category,
			Level:          rule.Level,
			Required:       rule.Count,
			SatisfiedCount: matched,
			Satisfied:      matched >= rule.Count,
		}
	}

	// Specific rules first so "any" rules cannot steal badges a specific
	// requirement needs.
	for i, rule := range rules {
		if rule.Category != models.RuleCategoryAny {
			evalRule(i, rule)
		}
	}
	for i, rule := range rules {
		if rule.Category == models.RuleCategoryAny {
			evalRule(i, rule)
		}
	}

	all := true
	for _, r := range results {
		if !r.Satisfied {
			all = false
			break
		}
	}

	return models.EvaluationResult{Rules: results, AllSatisfied: all}
}

// ReservedBadgesOf projects a promotion's unconsumed reservations into the
// evaluator's input shape. Reservations missing their badge or catalog
// preloads are skipped; the loader is expected to preload both.
func ReservedBadgesOf(promotion *models.Promotion) []ReservedBadge {
	out := make([]ReservedBadge, 0, len(promotion.Badges))
	for _, pb := range promotion.Badges {
		if pb.BadgeApplication == nil || pb.BadgeApplication.CatalogBadge == nil {
			continue
		}
		out = append(out, ReservedBadge{
			BadgeApplicationID: pb.BadgeApplicationID,
			Category:           pb.BadgeApplication.CatalogBadge.Category,
			Level:              pb.BadgeApplication.CatalogBadge.Level,
		})
	}
	return out
}
