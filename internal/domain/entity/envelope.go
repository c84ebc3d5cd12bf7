package entity

import (
	"math/big"
	"strings"
	"time"
)

// Envelope mirrors the contract's getEnvelopeInfo result for one id.
type Envelope struct {
	ID              uint64   `json:"id"`
	Creator         string   `json:"creator"`
	TotalAmount     *big.Int `json:"total_amount"`
	RemainingAmount *big.Int `json:"remaining_amount"`
	TotalCount      uint64   `json:"total_count"`
	RemainingCount  uint64   `json:"remaining_count"`
	IsRandom        bool     `json:"is_random"`
	IsActive        bool     `json:"is_active"`
	Message         string   `json:"message"`
	CreatedAt       int64    `json:"created_at"`
	ExpiresAt       int64    `json:"expires_at"`
}

// ViewerFlags holds the per-viewer contract answers for one envelope.
type ViewerFlags struct {
	Viewer     string `json:"viewer"`
	HasClaimed bool   `json:"has_claimed"`
	CanClaim   bool   `json:"can_claim"`
	Reason     string `json:"reason,omitempty"`
}

// StatusInput builds the classifier input. flags may be nil when no viewer
// is known, which leaves HasClaimed and CanClaim unset.
func (e *Envelope) StatusInput(flags *ViewerFlags) StatusInput {
	in := StatusInput{
		RemainingCount: e.RemainingCount,
		TotalCount:     e.TotalCount,
		ExpiresAt:      e.ExpiresAt,
		IsActive:       e.IsActive,
	}
	if flags != nil {
		hasClaimed, canClaim := flags.HasClaimed, flags.CanClaim
		in.HasClaimed = &hasClaimed
		in.CanClaim = &canClaim
	}
	return in
}

// IsOpen reports whether the envelope is active and not past expiry at now.
func (e *Envelope) IsOpen(now time.Time) bool {
	return e.IsActive && e.ExpiresAt >= now.Unix()
}

// ClaimedPercent is the share of the envelope already handed out, 0 to 100.
func (e *Envelope) ClaimedPercent() float64 {
	if e.TotalCount == 0 {
		return 0
	}
	return 100 - float64(e.RemainingCount)/float64(e.TotalCount)*100
}

// EnvelopeView is the API projection of an envelope with its status.
type EnvelopeView struct {
	ID                 uint64       `json:"id"`
	Creator            string       `json:"creator"`
	TotalAmountWei     string       `json:"total_amount_wei"`
	TotalAmountEth     string       `json:"total_amount_eth"`
	RemainingAmountWei string       `json:"remaining_amount_wei"`
	RemainingAmountEth string       `json:"remaining_amount_eth"`
	TotalCount         uint64       `json:"total_count"`
	RemainingCount     uint64       `json:"remaining_count"`
	Distribution       string       `json:"distribution"` // "random" or "fixed"
	IsActive           bool         `json:"is_active"`
	Message            string       `json:"message"`
	CreatedAt          time.Time    `json:"created_at"`
	ExpiresAt          time.Time    `json:"expires_at"`
	ClaimedPercent     float64      `json:"claimed_percent"`
	Status             StatusResult `json:"status"`
	Viewer             *ViewerFlags `json:"viewer,omitempty"`
}

// NewEnvelopeView classifies e for the given viewer at now.
func NewEnvelopeView(e *Envelope, flags *ViewerFlags, now time.Time) *EnvelopeView {
	distribution := "fixed"
	if e.IsRandom {
		distribution = "random"
	}
	return &EnvelopeView{
		ID:                 e.ID,
		Creator:            e.Creator,
		TotalAmountWei:     weiString(e.TotalAmount),
		TotalAmountEth:     FormatEther(e.TotalAmount),
		RemainingAmountWei: weiString(e.RemainingAmount),
		RemainingAmountEth: FormatEther(e.RemainingAmount),
		TotalCount:         e.TotalCount,
		RemainingCount:     e.RemainingCount,
		Distribution:       distribution,
		IsActive:           e.IsActive,
		Message:            e.Message,
		CreatedAt:          time.Unix(e.CreatedAt, 0).UTC(),
		ExpiresAt:          time.Unix(e.ExpiresAt, 0).UTC(),
		ClaimedPercent:     e.ClaimedPercent(),
		Status:             ClassifyStatus(e.StatusInput(flags), now),
		Viewer:             flags,
	}
}

// EnvelopePhase selects envelopes by lifecycle in listings.
type EnvelopePhase string

const (
	PhaseAll     EnvelopePhase = "all"
	PhaseActive  EnvelopePhase = "active"
	PhaseExpired EnvelopePhase = "expired"
)

// ParsePhase accepts an empty string as PhaseAll.
func ParsePhase(s string) (EnvelopePhase, bool) {
	switch EnvelopePhase(strings.ToLower(strings.TrimSpace(s))) {
	case "", PhaseAll:
		return PhaseAll, true
	case PhaseActive:
		return PhaseActive, true
	case PhaseExpired:
		return PhaseExpired, true
	}
	return "", false
}

type EnvelopeFilter struct {
	Phase   EnvelopePhase
	Creator string // checksummed hex, empty for any
	Limit   int
	Offset  int
}

type EnvelopePage struct {
	Items  []*EnvelopeView `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type EnvelopeStats struct {
	TotalEnvelopes  int64  `json:"total_envelopes"`
	ActiveEnvelopes int64  `json:"active_envelopes"`
	TotalSentWei    string `json:"total_sent_wei"`
	TotalSentEth    string `json:"total_sent_eth"`
	TotalClaimedWei string `json:"total_claimed_wei"`
	TotalClaimedEth string `json:"total_claimed_eth"`
	Claims          int64  `json:"claims"`
}

// Claim is one claimer's share of an envelope.
type Claim struct {
	Claimer   string `json:"claimer"`
	AmountWei string `json:"amount_wei"`
	AmountEth string `json:"amount_eth"`
}

// ContractLimits are the contract's public constants.
type ContractLimits struct {
	MaxCount         uint64 `json:"max_count"`
	MaxMessageLength uint64 `json:"max_message_length"`
	MinExpiry        uint64 `json:"min_expiry_seconds"`
	MaxExpiry        uint64 `json:"max_expiry_seconds"`
}

func weiString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
