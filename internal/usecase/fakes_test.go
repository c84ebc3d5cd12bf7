package usecase

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
)

var (
	testNow = time.Unix(1_700_000_000, 0)

	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func fixedClock() time.Time { return testNow }

func testConfig() *config.Config {
	return &config.Config{
		Indexer: config.IndexerConfig{Enabled: true, Interval: time.Second, Window: 2},
		Listing: config.ListingConfig{DefaultLimit: 20, MaxLimit: 50},
	}
}

func envelope(id uint64, remaining uint64, active bool, expiresAt int64) *entity.Envelope {
	return &entity.Envelope{
		ID:              id,
		Creator:         bob.Hex(),
		TotalAmount:     big.NewInt(3_000_000_000_000_000_000),
		RemainingAmount: big.NewInt(int64(remaining) * 1_000_000_000_000_000_000),
		TotalCount:      3,
		RemainingCount:  remaining,
		IsActive:        active,
		CreatedAt:       testNow.Unix() - 60,
		ExpiresAt:       expiresAt,
	}
}

type fakeEnvelopes struct {
	envelopes map[uint64]*entity.Envelope
	flags     map[common.Address]*entity.ViewerFlags
	claims    []entity.Claim
	failIDs   map[uint64]bool
	flagErr   error
	totalErr  error
	refreshed []uint64
}

func (f *fakeEnvelopes) TotalEnvelopes(context.Context) (uint64, error) {
	if f.totalErr != nil {
		return 0, f.totalErr
	}
	var total uint64
	for id := range f.envelopes {
		if id+1 > total {
			total = id + 1
		}
	}
	return total, nil
}

func (f *fakeEnvelopes) GetEnvelope(_ context.Context, id uint64) (*entity.Envelope, error) {
	if f.failIDs[id] {
		return nil, errors.New("rpc unavailable")
	}
	env, ok := f.envelopes[id]
	if !ok {
		return nil, entity.ErrEnvelopeNotFound
	}
	return env, nil
}

func (f *fakeEnvelopes) RefreshEnvelope(ctx context.Context, id uint64) (*entity.Envelope, error) {
	f.refreshed = append(f.refreshed, id)
	return f.GetEnvelope(ctx, id)
}

func (f *fakeEnvelopes) GetViewerFlags(_ context.Context, _ uint64, viewer common.Address) (*entity.ViewerFlags, error) {
	if f.flagErr != nil {
		return nil, f.flagErr
	}
	if flags, ok := f.flags[viewer]; ok {
		return flags, nil
	}
	return &entity.ViewerFlags{Viewer: viewer.Hex(), CanClaim: true}, nil
}

func (f *fakeEnvelopes) GetClaims(context.Context, uint64) ([]entity.Claim, error) {
	return f.claims, nil
}

type fakeIndex struct {
	rows       map[uint64]*entity.Envelope
	open       []uint64
	lastFilter entity.EnvelopeFilter
	stats      *entity.EnvelopeStats
	upsertErr  error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{rows: map[uint64]*entity.Envelope{}}
}

func (f *fakeIndex) Upsert(_ context.Context, env *entity.Envelope) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[env.ID] = env
	return nil
}

func (f *fakeIndex) List(_ context.Context, filter entity.EnvelopeFilter, _ time.Time) ([]*entity.Envelope, int, error) {
	f.lastFilter = filter
	ids := make([]uint64, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := make([]*entity.Envelope, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.rows[id])
	}
	return out, len(out), nil
}

func (f *fakeIndex) OpenIDs(context.Context, time.Time) ([]uint64, error) {
	return f.open, nil
}

func (f *fakeIndex) Stats(context.Context, time.Time) (*entity.EnvelopeStats, error) {
	return f.stats, nil
}

type fakeContract struct {
	chainID  uint64
	paused   bool
	owner    common.Address
	ownerErr error
	limits   *entity.ContractLimits
	limitErr error
	events   *entity.TransactionEvents
}

func (f *fakeContract) ChainID(context.Context) (uint64, error) { return f.chainID, nil }

func (f *fakeContract) ContractAddress() common.Address {
	return common.HexToAddress(config.DefaultContractAddress)
}

func (f *fakeContract) IsPaused(context.Context) (bool, error) { return f.paused, nil }

func (f *fakeContract) Owner(context.Context) (common.Address, error) {
	return f.owner, f.ownerErr
}

func (f *fakeContract) GetLimits(context.Context) (*entity.ContractLimits, error) {
	return f.limits, f.limitErr
}

func (f *fakeContract) GetTransactionEvents(_ context.Context, hash common.Hash) (*entity.TransactionEvents, error) {
	if f.events == nil {
		return nil, entity.ErrTransactionNotFound
	}
	events := *f.events
	events.TxHash = hash.Hex()
	return &events, nil
}
