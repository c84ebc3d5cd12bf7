//go:build integration

package repository

import (
	"context"
	"database/sql"
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"red-envelope/internal/domain/entity"
	"red-envelope/internal/infrastructure/database"
)

// Run with: RED_ENVELOPE_TEST_DSN=postgres://... go test -tags integration ./internal/infrastructure/repository/
func newPostgresIndex(t *testing.T) *envelopeIndexRepository {
	t.Helper()

	dsn := os.Getenv("RED_ENVELOPE_TEST_DSN")
	if dsn == "" {
		t.Skip("RED_ENVELOPE_TEST_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	ctx := context.Background()
	conn, err := database.Connect(ctx, db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.DB.ExecContext(ctx, "TRUNCATE envelopes")
	require.NoError(t, err)

	return NewEnvelopeIndexRepository(conn, zap.NewNop()).(*envelopeIndexRepository)
}

func wei(s string) *big.Int {
	v, _ := new(big.Int).SetString(s, 10)
	return v
}

func TestPostgresIndexRoundTrip(t *testing.T) {
	repo := newPostgresIndex(t)
	ctx := context.Background()
	now := indexNow

	rows := []*entity.Envelope{
		// open
		{ID: 0, Creator: alice.Hex(), TotalAmount: wei("3000000000000000000"), RemainingAmount: wei("1000000000000000000"),
			TotalCount: 3, RemainingCount: 1, IsActive: true, ExpiresAt: now.Unix() + 60},
		// sold out
		{ID: 1, Creator: bob.Hex(), TotalAmount: wei("2000000000000000000"), RemainingAmount: wei("0"),
			TotalCount: 2, RemainingCount: 0, IsActive: true, ExpiresAt: now.Unix() + 60},
		// expired
		{ID: 2, Creator: bob.Hex(), TotalAmount: wei("500000000000000000"), RemainingAmount: wei("500000000000000000"),
			TotalCount: 1, RemainingCount: 1, IsActive: true, ExpiresAt: now.Unix() - 1},
		// inactive
		{ID: 3, Creator: alice.Hex(), TotalAmount: wei("123456789012345678901234567890"), RemainingAmount: wei("1"),
			TotalCount: 4, RemainingCount: 4, IsActive: false, ExpiresAt: now.Unix() + 60},
	}
	for _, env := range rows {
		require.NoError(t, repo.Upsert(ctx, env))
	}

	ids, err := repo.OpenIDs(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, ids)

	// A later sync only moves the mutable columns.
	moved := *rows[0]
	moved.RemainingAmount = wei("0")
	moved.RemainingCount = 0
	moved.Message = "ignored"
	require.NoError(t, repo.Upsert(ctx, &moved))

	page, total, err := repo.List(ctx, entity.EnvelopeFilter{Phase: entity.PhaseAll, Limit: 2, Offset: 1}, now)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].ID)
	assert.Equal(t, uint64(1), page[1].ID)

	all, _, err := repo.List(ctx, entity.EnvelopeFilter{Creator: alice.Hex(), Limit: 10}, now)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "123456789012345678901234567890", all[0].TotalAmount.String())
	assert.Equal(t, "0", all[1].RemainingAmount.String())
	assert.Empty(t, all[1].Message)

	stats, err := repo.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalEnvelopes)
	assert.Equal(t, int64(2), stats.ActiveEnvelopes)
	assert.Equal(t, int64(3+2), stats.Claims)
}
