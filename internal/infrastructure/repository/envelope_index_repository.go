package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"red-envelope/internal/domain/entity"
	"red-envelope/internal/domain/repository"
	"red-envelope/internal/infrastructure/database"
)

type envelopeIndexRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewEnvelopeIndexRepository(db *database.Database, logger *zap.Logger) repository.EnvelopeIndexRepository {
	return &envelopeIndexRepository{
		db:     db,
		logger: logger,
	}
}

func (r *envelopeIndexRepository) Upsert(ctx context.Context, env *entity.Envelope) error {
	query := `
		INSERT INTO envelopes (id, creator, total_amount, remaining_amount, total_count, remaining_count,
			is_random, is_active, message, created_at, expires_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT(id) DO UPDATE SET
			remaining_amount = EXCLUDED.remaining_amount,
			remaining_count = EXCLUDED.remaining_count,
			is_active = EXCLUDED.is_active,
			synced_at = EXCLUDED.synced_at
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		int64(env.ID),
		env.Creator,
		entity.WeiDecimal(env.TotalAmount),
		entity.WeiDecimal(env.RemainingAmount),
		int64(env.TotalCount),
		int64(env.RemainingCount),
		env.IsRandom,
		env.IsActive,
		env.Message,
		env.CreatedAt,
		env.ExpiresAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert envelope %d: %w", env.ID, err)
	}

	return nil
}

// buildEnvelopeWhere renders the filter as a WHERE clause with positional args.
func buildEnvelopeWhere(filter entity.EnvelopeFilter, now time.Time) (string, []interface{}) {
	var conds []string
	var args []interface{}

	switch filter.Phase {
	case entity.PhaseActive:
		args = append(args, now.Unix())
		conds = append(conds, fmt.Sprintf("is_active AND expires_at >= $%d", len(args)))
	case entity.PhaseExpired:
		args = append(args, now.Unix())
		conds = append(conds, fmt.Sprintf("(NOT is_active OR expires_at < $%d)", len(args)))
	}

	if filter.Creator != "" {
		args = append(args, filter.Creator)
		conds = append(conds, fmt.Sprintf("creator = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *envelopeIndexRepository) List(ctx context.Context, filter entity.EnvelopeFilter, now time.Time) ([]*entity.Envelope, int, error) {
	where, args := buildEnvelopeWhere(filter, now)

	var total int
	if err := r.db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM envelopes"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count envelopes: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT id, creator, total_amount, remaining_amount, total_count, remaining_count,
			is_random, is_active, message, created_at, expires_at
		FROM envelopes%s
		ORDER BY id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []*entity.Envelope
	for rows.Next() {
		var (
			env                 entity.Envelope
			id, totalCount      int64
			remainingCount      int64
			totalAmt, remainAmt decimal.Decimal
		)
		if err := rows.Scan(
			&id,
			&env.Creator,
			&totalAmt,
			&remainAmt,
			&totalCount,
			&remainingCount,
			&env.IsRandom,
			&env.IsActive,
			&env.Message,
			&env.CreatedAt,
			&env.ExpiresAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan envelope: %w", err)
		}
		env.ID = uint64(id)
		env.TotalCount = uint64(totalCount)
		env.RemainingCount = uint64(remainingCount)
		env.TotalAmount = totalAmt.BigInt()
		env.RemainingAmount = remainAmt.BigInt()
		envelopes = append(envelopes, &env)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate envelopes: %w", err)
	}

	return envelopes, total, nil
}

func (r *envelopeIndexRepository) OpenIDs(ctx context.Context, now time.Time) ([]uint64, error) {
	query := `
		SELECT id FROM envelopes
		WHERE is_active AND expires_at >= $1 AND remaining_count > 0
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list open envelopes: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan envelope id: %w", err)
		}
		ids = append(ids, uint64(id))
	}
	return ids, rows.Err()
}

// Stats aggregates the index. Claimed amount is total minus remaining summed
// over every row, i.e. whatever has left the envelopes.
func (r *envelopeIndexRepository) Stats(ctx context.Context, now time.Time) (*entity.EnvelopeStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active AND expires_at >= $1),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(total_amount - remaining_amount), 0),
			COALESCE(SUM(total_count - remaining_count), 0)
		FROM envelopes
	`

	var (
		stats         entity.EnvelopeStats
		sent, claimed decimal.Decimal
	)
	err := r.db.DB.QueryRowContext(ctx, query, now.Unix()).Scan(
		&stats.TotalEnvelopes,
		&stats.ActiveEnvelopes,
		&sent,
		&claimed,
		&stats.Claims,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute envelope stats: %w", err)
	}

	stats.TotalSentWei = sent.String()
	stats.TotalSentEth = sent.Shift(-entity.EtherDecimals).String()
	stats.TotalClaimedWei = claimed.String()
	stats.TotalClaimedEth = claimed.Shift(-entity.EtherDecimals).String()

	return &stats, nil
}
