package service

import (
	"testing"

	"laurel/internal/models"
)

func badge(id uint, cat models.BadgeCategory, level models.BadgeLevel) ReservedBadge {
	return ReservedBadge{BadgeApplicationID: id, Category: cat, Level: level}
}

func TestEvaluateSpecificBeforeAny(t *testing.T) {
	rules := models.TemplateRules{
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelGold, Count: 2},
		{Category: models.RuleCategoryAny, Level: models.BadgeLevelSilver, Count: 1},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryTechnical, models.BadgeLevelGold),
		badge(2, models.BadgeCategoryTechnical, models.BadgeLevelGold),
		badge(3, models.BadgeCategoryTechnical, models.BadgeLevelGold),
		badge(4, models.BadgeCategoryOrganizational, models.BadgeLevelSilver),
	}

	result := Evaluate(rules, badges)
	if !result.AllSatisfied {
		t.Fatalf("expected all rules satisfied, got %+v", result.Rules)
	}
	if got := result.Rules[0].SatisfiedCount; got != 3 {
		t.Errorf("technical:gold satisfied count = %d, want 3", got)
	}
	if got := result.Rules[1].SatisfiedCount; got != 1 {
		t.Errorf("any:silver satisfied count = %d, want 1", got)
	}
}

func TestEvaluateUnsatisfiedReportsCounts(t *testing.T) {
	rules := models.TemplateRules{
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelGold, Count: 2},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryTechnical, models.BadgeLevelGold),
	}

	result := Evaluate(rules, badges)
	if result.AllSatisfied {
		t.Fatal("expected unsatisfied result")
	}
	r := result.Rules[0]
	if r.Satisfied || r.SatisfiedCount != 1 || r.Required != 2 {
		t.Fatalf("unexpected rule result %+v", r)
	}
	unsatisfied := result.Unsatisfied()
	if len(unsatisfied) != 1 {
		t.Fatalf("expected one unsatisfied rule, got %d", len(unsatisfied))
	}
}

func TestEvaluateNoDoubleCounting(t *testing.T) {
	// One silver badge cannot satisfy both a specific rule and an "any" rule.
	rules := models.TemplateRules{
		{Category: models.RuleCategoryOrganizational, Level: models.BadgeLevelSilver, Count: 1},
		{Category: models.RuleCategoryAny, Level: models.BadgeLevelSilver, Count: 1},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryOrganizational, models.BadgeLevelSilver),
	}

	result := Evaluate(rules, badges)
	if result.AllSatisfied {
		t.Fatal("one badge must not satisfy two rules")
	}
	if !result.Rules[0].Satisfied {
		t.Error("specific rule should claim the badge")
	}
	if result.Rules[1].Satisfied || result.Rules[1].SatisfiedCount != 0 {
		t.Errorf("any rule should see an empty pool, got %+v", result.Rules[1])
	}
}

func TestEvaluateDuplicateSpecificRulesShareNothing(t *testing.T) {
	// Two identical specific rules each require their own badges.
	rules := models.TemplateRules{
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelBronze, Count: 1},
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelBronze, Count: 1},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryTechnical, models.BadgeLevelBronze),
	}

	result := Evaluate(rules, badges)
	if result.AllSatisfied {
		t.Fatal("a single badge must not satisfy both rules")
	}
	if !result.Rules[0].Satisfied {
		t.Error("first rule should be satisfied")
	}
	if result.Rules[1].Satisfied {
		t.Error("second rule should be starved")
	}
}

func TestEvaluateLevelsAreExact(t *testing.T) {
	// Gold never substitutes for silver; levels are tags, not a scale.
	rules := models.TemplateRules{
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelSilver, Count: 1},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryTechnical, models.BadgeLevelGold),
	}

	result := Evaluate(rules, badges)
	if result.AllSatisfied {
		t.Fatal("gold badge must not satisfy a silver rule")
	}
	if got := result.Rules[0].SatisfiedCount; got != 0 {
		t.Errorf("satisfied count = %d, want 0", got)
	}
}

func TestEvaluateAnyRuleDrawsFromLeftovers(t *testing.T) {
	// The specific rule needs one of the two gold badges; the surplus one
	// remains available to the "any" rule.
	rules := models.TemplateRules{
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelGold, Count: 1},
		{Category: models.RuleCategoryAny, Level: models.BadgeLevelGold, Count: 1},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryTechnical, models.BadgeLevelGold),
		badge(2, models.BadgeCategoryTechnical, models.BadgeLevelGold),
	}

	result := Evaluate(rules, badges)
	if !result.AllSatisfied {
		t.Fatalf("expected both rules satisfied, got %+v", result.Rules)
	}
}

func TestEvaluateEmptyReservations(t *testing.T) {
	rules := models.TemplateRules{
		{Category: models.RuleCategoryAny, Level: models.BadgeLevelBronze, Count: 1},
	}

	result := Evaluate(rules, nil)
	if result.AllSatisfied {
		t.Fatal("no badges cannot satisfy a rule")
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	rules := models.TemplateRules{
		{Category: models.RuleCategoryTechnical, Level: models.BadgeLevelGold, Count: 2},
		{Category: models.RuleCategorySoftskilled, Level: models.BadgeLevelBronze, Count: 1},
		{Category: models.RuleCategoryAny, Level: models.BadgeLevelSilver, Count: 2},
	}
	badges := []ReservedBadge{
		badge(1, models.BadgeCategoryTechnical, models.BadgeLevelGold),
		badge(2, models.BadgeCategoryTechnical, models.BadgeLevelGold),
		badge(3, models.BadgeCategorySoftskilled, models.BadgeLevelBronze),
		badge(4, models.BadgeCategoryOrganizational, models.BadgeLevelSilver),
		badge(5, models.BadgeCategoryTechnical, models.BadgeLevelSilver),
	}

	first := Evaluate(rules, badges)
	for i := 0; i < 5; i++ {
		again := Evaluate(rules, badges)
		if again.AllSatisfied != first.AllSatisfied {
			t.Fatal("evaluation is not deterministic")
		}
		for j := range first.Rules {
			if again.Rules[j] != first.Rules[j] {
				t.Fatalf("rule %d diverged between runs: %+v vs %+v", j, first.Rules[j], again.Rules[j])
			}
		}
	}
}
