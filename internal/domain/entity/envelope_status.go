package entity

import "time"

// EnvelopeStatus is the display state of an envelope for one viewer.
type EnvelopeStatus string

const (
	StatusExpired      EnvelopeStatus = "expired"
	StatusClaimed      EnvelopeStatus = "claimed"
	StatusSoldOut      EnvelopeStatus = "sold_out"
	StatusClaimable    EnvelopeStatus = "claimable"
	StatusNotClaimable EnvelopeStatus = "not_claimable"
)

// StatusTone is the styling hint paired 1:1 with an EnvelopeStatus.
type StatusTone string

const (
	ToneGray   StatusTone = "gray"
	ToneBlue   StatusTone = "blue"
	ToneOrange StatusTone = "orange"
	ToneGreen  StatusTone = "green"
	ToneRed    StatusTone = "red"
)

// StatusInput is the snapshot the classifier works on. HasClaimed and
// CanClaim are nil when the viewer is unknown.
type StatusInput struct {
	RemainingCount uint64
	TotalCount     uint64
	ExpiresAt      int64 // unix seconds
	IsActive       bool
	HasClaimed     *bool
	CanClaim       *bool
}

type StatusResult struct {
	Label      EnvelopeStatus `json:"label"`
	Tone       StatusTone     `json:"tone"`
	Actionable bool           `json:"actionable"`
}

// ClassifyStatus maps a snapshot to exactly one status. Checks run in order
// and the first match wins: expired, claimed, sold out, claimable, not claimable.
func ClassifyStatus(in StatusInput, now time.Time) StatusResult {
	switch {
	case !in.IsActive || in.ExpiresAt < now.Unix():
		return StatusResult{Label: StatusExpired, Tone: ToneGray}
	case isTrue(in.HasClaimed):
		return StatusResult{Label: StatusClaimed, Tone: ToneBlue}
	case in.RemainingCount == 0:
		return StatusResult{Label: StatusSoldOut, Tone: ToneOrange}
	case isTrue(in.CanClaim):
		return StatusResult{Label: StatusClaimable, Tone: ToneGreen, Actionable: true}
	default:
		return StatusResult{Label: StatusNotClaimable, Tone: ToneRed}
	}
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
