// Package validation holds request-level input checks shared by handlers and
// services.
package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxPledgeBatch caps how many badge applications one pledge or release
	// request may name.
	MaxPledgeBatch = 100
	// MaxReviewReasonLength caps the free-text reason on promotion reviews.
	MaxReviewReasonLength = 2000
	// MaxEvidenceLength caps the evidence text on badge applications.
	MaxEvidenceLength = 10000
)

// ValidateBadgeBatch checks a pledge/release batch for emptiness, size, and
// duplicate ids.
func ValidateBadgeBatch(ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one badge application id is required")
	}
	if len(ids) > MaxPledgeBatch {
		return fmt.Errorf("at most %d badge applications per request, got %d", MaxPledgeBatch, len(ids))
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return fmt.Errorf("badge application id must be positive")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("badge application %d listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateReviewReason checks the free-text reason attached to a rejection.
// Rejections require a non-blank reason; approvals may pass an empty string.
func ValidateReviewReason(reason string, required bool) error {
	trimmed := strings.TrimSpace(reason)
	if required && trimmed == "" {
		return fmt.Errorf("a reason is required")
	}
	if len(reason) > MaxReviewReasonLength {
		return fmt.Errorf("reason must be at most %d characters", MaxReviewReasonLength)
	}
	return nil
}

// ValidateEvidence checks badge application evidence text.
func ValidateEvidence(evidence string) error {
	if strings.TrimSpace(evidence) == "" {
		return fmt.Errorf("evidence is required")
	}
	if len(evidence) > MaxEvidenceLength {
		return fmt.Errorf("evidence must be at most %d characters", MaxEvidenceLength)
	}
	return nil
}
