package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/domain/repository"
	"red-envelope/internal/infrastructure/metrics"
)

// ListQuery carries the raw listing parameters from the HTTP layer.
type ListQuery struct {
	Phase   string
	Creator string
	Viewer  string
	Limit   int
	Offset  int
}

type EnvelopeUsecase interface {
	// GetEnvelope classifies one envelope. viewer may be empty.
	GetEnvelope(ctx context.Context, id uint64, viewer string) (*entity.EnvelopeView, error)

	// ListEnvelopes pages through the index, newest first.
	ListEnvelopes(ctx context.Context, query ListQuery) (*entity.EnvelopePage, error)

	GetClaims(ctx context.Context, id uint64) ([]entity.Claim, error)

	GetStats(ctx context.Context) (*entity.EnvelopeStats, error)
}

type envelopeUsecase struct {
	envelopes repository.EnvelopeRepository
	index     repository.EnvelopeIndexRepository
	config    *config.Config
	clock     Clock
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewEnvelopeUsecase(
	envelopes repository.EnvelopeRepository,
	index repository.EnvelopeIndexRepository,
	cfg *config.Config,
	clock Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) EnvelopeUsecase {
	return &envelopeUsecase{
		envelopes: envelopes,
		index:     index,
		config:    cfg,
		clock:     clock,
		metrics:   m,
		logger:    logger,
	}
}

// parseAddress returns nil for an empty string.
func parseAddress(s string) (*common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	return &addr, nil
}

func (u *envelopeUsecase) view(env *entity.Envelope, flags *entity.ViewerFlags) *entity.EnvelopeView {
	v := entity.NewEnvelopeView(env, flags, u.clock())
	u.metrics.Classified(string(v.Status.Label))
	return v
}

func (u *envelopeUsecase) GetEnvelope(ctx context.Context, id uint64, viewer string) (*entity.EnvelopeView, error) {
	viewerAddr, err := parseAddress(viewer)
	if err != nil {
		return nil, err
	}

	env, err := u.envelopes.GetEnvelope(ctx, id)
	if err != nil {
		u.logger.Error("Failed to get envelope", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	var flags *entity.ViewerFlags
	if viewerAddr != nil {
		flags, err = u.envelopes.GetViewerFlags(ctx, id, *viewerAddr)
		if err != nil {
			u.logger.Error("Failed to get viewer flags",
				zap.Uint64("id", id),
				zap.String("viewer", viewerAddr.Hex()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	return u.view(env, flags), nil
}

func (u *envelopeUsecase) ListEnvelopes(ctx context.Context, query ListQuery) (*entity.EnvelopePage, error) {
	phase, ok := entity.ParsePhase(query.Phase)
	if !ok {
		return nil, entity.ErrInvalidPhase
	}
	creator, err := parseAddress(query.Creator)
	if err != nil {
		return nil, err
	}
	viewer, err := parseAddress(query.Viewer)
	if err != nil {
		return nil, err
	}

	filter := entity.EnvelopeFilter{
		Phase:  phase,
		Limit:  u.clampLimit(query.Limit),
		Offset: query.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if creator != nil {
		filter.Creator = creator.Hex()
	}

	now := u.clock()
	envelopes, total, err := u.index.List(ctx, filter, now)
	if err != nil {
		u.logger.Error("Failed to list envelopes", zap.Error(err))
		return nil, err
	}

	page := &entity.EnvelopePage{
		Items:  make([]*entity.EnvelopeView, 0, len(envelopes)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	for _, env := range envelopes {
		var flags *entity.ViewerFlags
		if viewer != nil {
			// A failed viewer lookup degrades the row to "not claimable"
			// instead of failing the page.
			flags, err = u.envelopes.GetViewerFlags(ctx, env.ID, *viewer)
			if err != nil {
				u.logger.Warn("Failed to get viewer flags for listing",
					zap.Uint64("id", env.ID),
					zap.String("viewer", viewer.Hex()),
					zap.Error(err),
				)
				flags = nil
			}
		}
		page.Items = append(page.Items, u.view(env, flags))
	}

	return page, nil
}

func (u *envelopeUsecase) clampLimit(limit int) int {
	if limit <= 0 {
		return u.config.Listing.DefaultLimit
	}
	if limit > u.config.Listing.MaxLimit {
		return u.config.Listing.MaxLimit
	}
	return limit
}

func (u *envelopeUsecase) GetClaims(ctx context.Context, id uint64) ([]entity.Claim, error) {
	// Resolve the envelope first so unknown ids report not found.
	if _, err := u.envelopes.GetEnvelope(ctx, id); err != nil {
		return nil, err
	}

	claims, err := u.envelopes.GetClaims(ctx, id)
	if err != nil {
		u.logger.Error("Failed to get claims", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return claims, nil
}

func (u *envelopeUsecase) GetStats(ctx context.Context) (*entity.EnvelopeStats, error) {
	stats, err := u.index.Stats(ctx, u.clock())
	if err != nil {
		u.logger.Error("Failed to get envelope stats", zap.Error(err))
		return nil, err
	}
	return stats, nil
}
