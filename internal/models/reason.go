package models

import "strings"

// ReasonKind classifies a single reason line from a decision record.
type ReasonKind string

// Reason kinds. The legacy data encodes these as conventional string
// prefixes ("Partial Rejected: ...", "Non-Conventional Status: ..."), so
// parsing happens once here and never again downstream.
const (
	ReasonDiplomaRejected   ReasonKind = "DIPLOMA_REJECTED"
	ReasonDiplomaRecognized ReasonKind = "DIPLOMA_RECOGNIZED"
	ReasonBscRejected       ReasonKind = "BSC_REJECTED"
	ReasonBscRecognized     ReasonKind = "BSC_RECOGNIZED"
	ReasonHigherRejected    ReasonKind = "HIGHER_REJECTED"
	ReasonHigherRecognized  ReasonKind = "HIGHER_RECOGNIZED"
	ReasonNonConventional   ReasonKind = "NON_CONVENTIONAL"
	ReasonControl           ReasonKind = "CONTROL"
	ReasonFreeText          ReasonKind = "FREE_TEXT"
)

// Prefix of the token that switches a reason onto the non-conventional track.
const NonConventionalPrefix = "Non-Conventional Status:"

// ReasonToken is a parsed reason line. Raw always preserves the original
// text verbatim; bullet reasons are rendered from Raw, never re-encoded.
type ReasonToken struct {
	Raw     string
	Kind    ReasonKind
	Outcome string // set for non-conventional tokens: "Recognized" or "Rejected"
}

// IsBullet reports whether the token is a display reason rather than a
// control token.
func (t ReasonToken) IsBullet() bool {
	return t.Kind == ReasonFreeText
}

// controlPrefixes separate control tokens from bullet reasons.
var controlPrefixes = []string{
	"partial",
	"rejection",
	"recognition",
	"non-conventional status",
	"rejected",
}

// ParseReason classifies one reason line, case-insensitively.
func ParseReason(raw string) ReasonToken {
	lower := strings.ToLower(strings.TrimSpace(raw))

	if strings.HasPrefix(lower, "non-conventional status") {
		outcome := "Rejected"
		if strings.Contains(lower, "recognized") {
			outcome = "Recognized"
		}
		return ReasonToken{Raw: raw, Kind: ReasonNonConventional, Outcome: outcome}
	}

	switch {
	case strings.Contains(lower, "partial rejected: diploma rejection"):
		return ReasonToken{Raw: raw, Kind: ReasonDiplomaRejected}
	case strings.Contains(lower, "partial rejected: bsc rejection"):
		return ReasonToken{Raw: raw, Kind: ReasonBscRejected}
	case strings.Contains(lower, "rejection: higher graduate studies rejected"):
		return ReasonToken{Raw: raw, Kind: ReasonHigherRejected}
	case strings.Contains(lower, "partial: diplomas recognized"):
		return ReasonToken{Raw: raw, Kind: ReasonDiplomaRecognized}
	case strings.Contains(lower, "partial: bachelor's recognized"):
		return ReasonToken{Raw: raw, Kind: ReasonBscRecognized}
	case strings.Contains(lower, "higher graduate studies recognized"):
		return ReasonToken{Raw: raw, Kind: ReasonHigherRecognized}
	}

	for _, prefix := range controlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ReasonToken{Raw: raw, Kind: ReasonControl}
		}
	}

	return ReasonToken{Raw: raw, Kind: ReasonFreeText}
}

// ParseReasons classifies a reason list preserving order.
func ParseReasons(raw []string) []ReasonToken {
	tokens := make([]ReasonToken, 0, len(raw))
	for _, line := range raw {
		tokens = append(tokens, ParseReason(line))
	}
	return tokens
}

// IsNonConventionalReason reports whether a raw reason line belongs to the
// non-conventional track, used when merging decision records.
func IsNonConventionalReason(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), NonConventionalPrefix)
}
