package pipeline

import (
	"strings"

	"github.com/steveyegge/docdrift/internal/ai"
	"github.com/steveyegge/docdrift/internal/types"
)

// verificationPassed decides pass/fail from a verify phase's output text.
//
// Two tiers: a well-formed VerificationResult embedded in the text is
// trusted directly; otherwise a substring check for an explicit pass marker
// decides. An explicit fail marker, or no recognizable marker at all, is a
// FAIL.
func verificationPassed(text string) bool {
	parsed := ai.Parse[types.VerificationResult](text)
	if parsed.Success && parsed.Data.OverallStatus != "" {
		return parsed.Data.Passed()
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, `"overall_status": "pass"`) ||
		strings.Contains(lower, `"overall_status":"pass"`) {
		return true
	}
	return false
}
