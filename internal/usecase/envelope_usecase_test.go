package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"red-envelope/internal/domain/entity"
	"red-envelope/internal/infrastructure/metrics"
)

func newTestEnvelopeUsecase(envelopes *fakeEnvelopes, index *fakeIndex) EnvelopeUsecase {
	return NewEnvelopeUsecase(envelopes, index, testConfig(), fixedClock, metrics.NewMetrics(), zap.NewNop())
}

func TestGetEnvelopeClassifiesForViewer(t *testing.T) {
	envelopes := &fakeEnvelopes{
		envelopes: map[uint64]*entity.Envelope{0: envelope(0, 2, true, testNow.Unix()+3600)},
		flags: map[common.Address]*entity.ViewerFlags{
			alice: {Viewer: alice.Hex(), HasClaimed: true, Reason: "Already claimed"},
		},
	}
	uc := newTestEnvelopeUsecase(envelopes, newFakeIndex())
	ctx := context.Background()

	tests := []struct {
		name   string
		viewer string
		want   entity.EnvelopeStatus
	}{
		{name: "anonymous", viewer: "", want: entity.StatusNotClaimable},
		{name: "claimer", viewer: alice.Hex(), want: entity.StatusClaimed},
		{name: "eligible", viewer: bob.Hex(), want: entity.StatusClaimable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := uc.GetEnvelope(ctx, 0, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Status.Label)
		})
	}
}

func TestGetEnvelopeExpiredBeatsViewer(t *testing.T) {
	envelopes := &fakeEnvelopes{
		envelopes: map[uint64]*entity.Envelope{0: envelope(0, 2, true, testNow.Unix()-1)},
	}
	uc := newTestEnvelopeUsecase(envelopes, newFakeIndex())

	view, err := uc.GetEnvelope(context.Background(), 0, bob.Hex())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusExpired, view.Status.Label)
	assert.False(t, view.Status.Actionable)
}

func TestGetEnvelopeErrors(t *testing.T) {
	envelopes := &fakeEnvelopes{
		envelopes: map[uint64]*entity.Envelope{0: envelope(0, 2, true, testNow.Unix()+60)},
	}
	uc := newTestEnvelopeUsecase(envelopes, newFakeIndex())
	ctx := context.Background()

	_, err := uc.GetEnvelope(ctx, 0, "not-an-address")
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)

	_, err = uc.GetEnvelope(ctx, 9, "")
	assert.ErrorIs(t, err, entity.ErrEnvelopeNotFound)

	envelopes.flagErr = errors.New("rpc unavailable")
	_, err = uc.GetEnvelope(ctx, 0, alice.Hex())
	assert.Error(t, err)
}

func TestListEnvelopes(t *testing.T) {
	index := newFakeIndex()
	index.rows[0] = envelope(0, 0, true, testNow.Unix()+60)
	index.rows[1] = envelope(1, 2, false, testNow.Unix()+60)
	index.rows[2] = envelope(2, 1, true, testNow.Unix()+60)
	uc := newTestEnvelopeUsecase(&fakeEnvelopes{}, index)

	page, err := uc.ListEnvelopes(context.Background(), ListQuery{Viewer: alice.Hex()})
	require.NoError(t, err)

	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, entity.StatusClaimable, page.Items[0].Status.Label)
	assert.Equal(t, entity.StatusExpired, page.Items[1].Status.Label)
	assert.Equal(t, entity.StatusSoldOut, page.Items[2].Status.Label)
}

func TestListEnvelopesNormalizesFilter(t *testing.T) {
	index := newFakeIndex()
	uc := newTestEnvelopeUsecase(&fakeEnvelopes{}, index)
	ctx := context.Background()

	_, err := uc.ListEnvelopes(ctx, ListQuery{
		Phase:   "Active",
		Creator: "0x00000000000000000000000000000000000000b2",
		Limit:   500,
		Offset:  -3,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EnvelopeFilter{
		Phase:   entity.PhaseActive,
		Creator: bob.Hex(),
		Limit:   50,
		Offset:  0,
	}, index.lastFilter)

	_, err = uc.ListEnvelopes(ctx, ListQuery{Phase: "pending"})
	assert.ErrorIs(t, err, entity.ErrInvalidPhase)

	_, err = uc.ListEnvelopes(ctx, ListQuery{Creator: "0x12"})
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
}

func TestListEnvelopesDegradesOnViewerError(t *testing.T) {
	index := newFakeIndex()
	index.rows[0] = envelope(0, 2, true, testNow.Unix()+60)
	uc := newTestEnvelopeUsecase(&fakeEnvelopes{flagErr: errors.New("rpc unavailable")}, index)

	page, err := uc.ListEnvelopes(context.Background(), ListQuery{Viewer: alice.Hex()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.StatusNotClaimable, page.Items[0].Status.Label)
	assert.Nil(t, page.Items[0].Viewer)
}

func TestGetClaims(t *testing.T) {
	envelopes := &fakeEnvelopes{
		envelopes: map[uint64]*entity.Envelope{0: envelope(0, 2, true, testNow.Unix()+60)},
		claims:    []entity.Claim{{Claimer: alice.Hex(), AmountWei: "1", AmountEth: "0.000000000000000001"}},
	}
	uc := newTestEnvelopeUsecase(envelopes, newFakeIndex())

	claims, err := uc.GetClaims(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, claims, 1)

	_, err = uc.GetClaims(context.Background(), 7)
	assert.ErrorIs(t, err, entity.ErrEnvelopeNotFound)
}

func TestGetStats(t *testing.T) {
	index := newFakeIndex()
	index.stats = &entity.EnvelopeStats{TotalEnvelopes: 4, ActiveEnvelopes: 1}
	uc := newTestEnvelopeUsecase(&fakeEnvelopes{}, index)

	stats, err := uc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalEnvelopes)
}
