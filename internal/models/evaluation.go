package models

// RuleResult reports how one template rule fared against a promotion's
// reserved badges.
type RuleResult struct {
	Category       RuleCategory `json:"category"`
	Level          BadgeLevel   `json:"level"`
	Required       int          `json:"required"`
	SatisfiedCount int          `json:"satisfied_count"`
	Satisfied      bool         `json:"satisfied"`
}

// EvaluationResult is the outcome of checking a promotion against its
// template. It is recomputed on every call and never cached.
type EvaluationResult struct {
	Rules        []RuleResult `json:"rules"`
	AllSatisfied bool         `json:"all_satisfied"`
}

// Unsatisfied returns the rules that fell short of their required count.
func (r EvaluationResult) Unsatisfied() []RuleResult {
	var out []RuleResult
	for _, rule := range r.Rules {
		if !rule.Satisfied {
			out = append(out, rule)
		}
	}
	return out
}
