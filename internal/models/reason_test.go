package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReasonClassification(t *testing.T) {
	cases := []struct {
		raw  string
		kind ReasonKind
	}{
		{"Partial Rejected: Diploma Rejection", ReasonDiplomaRejected},
		{"Partial Rejected: BSc Rejection", ReasonBscRejected},
		{"Rejection: Higher Graduate Studies Rejected", ReasonHigherRejected},
		{"Partial: Diplomas Recognized", ReasonDiplomaRecognized},
		{"Partial: Bachelor's Recognized", ReasonBscRecognized},
		{"Recognition: Higher Graduate Studies Recognized", ReasonHigherRecognized},
		{"Non-Conventional Status: Recognized", ReasonNonConventional},
		{"Non-Conventional Status: Rejected", ReasonNonConventional},
		{"Recognition: Full Recognition", ReasonControl},
		{"Rejected pending committee review", ReasonControl},
		{"Missing accreditation documents", ReasonFreeText},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			token := ParseReason(tc.raw)
			assert.Equal(t, tc.kind, token.Kind)
			assert.Equal(t, tc.raw, token.Raw)
		})
	}
}

func TestParseReasonCaseInsensitive(t *testing.T) {
	token := ParseReason("PARTIAL: DIPLOMAS RECOGNIZED")
	assert.Equal(t, ReasonDiplomaRecognized, token.Kind)
}

func TestParseReasonNonConventionalOutcome(t *testing.T) {
	token := ParseReason("Non-Conventional Status: Recognized")
	assert.Equal(t, "Recognized", token.Outcome)

	token = ParseReason("Non-Conventional Status: Rejected")
	assert.Equal(t, "Rejected", token.Outcome)
}

func TestIsBullet(t *testing.T) {
	assert.True(t, ParseReason("Quality audit pending").IsBullet())
	assert.False(t, ParseReason("Partial: Diplomas Recognized").IsBullet())
	assert.False(t, ParseReason("Non-Conventional Status: Recognized").IsBullet())
}

func TestIsNonConventionalReason(t *testing.T) {
	assert.True(t, IsNonConventionalReason("Non-Conventional Status: Recognized"))
	assert.True(t, IsNonConventionalReason("  Non-Conventional Status: Rejected"))
	assert.False(t, IsNonConventionalReason("Partial: Diplomas Recognized"))
}
