package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var classifyNow = time.Unix(1_700_000_000, 0)

func boolPtr(b bool) *bool { return &b }

func baseInput() StatusInput {
	return StatusInput{
		RemainingCount: 1,
		TotalCount:     5,
		ExpiresAt:      classifyNow.Add(60 * time.Second).Unix(),
		IsActive:       true,
	}
}

func TestClassifyStatusScenarios(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StatusInput)
		want   StatusResult
	}{
		{
			name:   "inactive envelope is expired",
			mutate: func(in *StatusInput) { in.IsActive = false },
			want:   StatusResult{Label: StatusExpired, Tone: ToneGray},
		},
		{
			name:   "past expiry is expired",
			mutate: func(in *StatusInput) { in.ExpiresAt = classifyNow.Add(-10 * time.Second).Unix() },
			want:   StatusResult{Label: StatusExpired, Tone: ToneGray},
		},
		{
			name:   "viewer already claimed",
			mutate: func(in *StatusInput) { in.HasClaimed = boolPtr(true) },
			want:   StatusResult{Label: StatusClaimed, Tone: ToneBlue},
		},
		{
			name:   "no shares left",
			mutate: func(in *StatusInput) { in.RemainingCount = 0 },
			want:   StatusResult{Label: StatusSoldOut, Tone: ToneOrange},
		},
		{
			name:   "eligible viewer",
			mutate: func(in *StatusInput) { in.CanClaim = boolPtr(true) },
			want:   StatusResult{Label: StatusClaimable, Tone: ToneGreen, Actionable: true},
		},
		{
			name:   "unknown viewer",
			mutate: func(*StatusInput) {},
			want:   StatusResult{Label: StatusNotClaimable, Tone: ToneRed},
		},
		{
			name: "ineligible viewer",
			mutate: func(in *StatusInput) {
				in.HasClaimed = boolPtr(false)
				in.CanClaim = boolPtr(false)
			},
			want: StatusResult{Label: StatusNotClaimable, Tone: ToneRed},
		},
		{
			name:   "expiry equal to now is still open",
			mutate: func(in *StatusInput) { in.ExpiresAt = classifyNow.Unix(); in.CanClaim = boolPtr(true) },
			want:   StatusResult{Label: StatusClaimable, Tone: ToneGreen, Actionable: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			assert.Equal(t, tt.want, ClassifyStatus(in, classifyNow))
		})
	}
}

// Walks every combination of the optional and boolean fields and checks the
// precedence rules hold regardless of the lower priority fields.
func TestClassifyStatusPrecedence(t *testing.T) {
	optionals := []*bool{nil, boolPtr(false), boolPtr(true)}
	expiries := map[string]int64{
		"past":   classifyNow.Add(-time.Second).Unix(),
		"future": classifyNow.Add(time.Hour).Unix(),
	}

	for expiryName, expiresAt := range expiries {
		for _, active := range []bool{false, true} {
			for _, remaining := range []uint64{0, 3} {
				for _, hasClaimed := range optionals {
					for _, canClaim := range optionals {
						in := StatusInput{
							RemainingCount: remaining,
							TotalCount:     5,
							ExpiresAt:      expiresAt,
							IsActive:       active,
							HasClaimed:     hasClaimed,
							CanClaim:       canClaim,
						}
						got := ClassifyStatus(in, classifyNow)

						var want EnvelopeStatus
						switch {
						case !active || expiryName == "past":
							want = StatusExpired
						case hasClaimed != nil && *hasClaimed:
							want = StatusClaimed
						case remaining == 0:
							want = StatusSoldOut
						case canClaim != nil && *canClaim:
							want = StatusClaimable
						default:
							want = StatusNotClaimable
						}

						assert.Equal(t, want, got.Label, "input %+v", in)
						assert.Equal(t, want == StatusClaimable, got.Actionable, "input %+v", in)
					}
				}
			}
		}
	}
}

func TestStatusToneIsOneToOne(t *testing.T) {
	seen := map[StatusTone]EnvelopeStatus{}
	inputs := []StatusInput{
		{IsActive: false},
		{IsActive: true, ExpiresAt: classifyNow.Unix() + 1, RemainingCount: 1, HasClaimed: boolPtr(true)},
		{IsActive: true, ExpiresAt: classifyNow.Unix() + 1},
		{IsActive: true, ExpiresAt: classifyNow.Unix() + 1, RemainingCount: 1, CanClaim: boolPtr(true)},
		{IsActive: true, ExpiresAt: classifyNow.Unix() + 1, RemainingCount: 1},
	}
	for _, in := range inputs {
		res := ClassifyStatus(in, classifyNow)
		if prev, ok := seen[res.Tone]; ok {
			assert.Equal(t, prev, res.Label)
		}
		seen[res.Tone] = res.Label
	}
	assert.Len(t, seen, 5)
}
