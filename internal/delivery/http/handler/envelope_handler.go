package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"red-envelope/internal/domain/entity"
	"red-envelope/internal/usecase"
)

type EnvelopeHandler struct {
	usecase usecase.EnvelopeUsecase
	logger  *zap.Logger
}

func NewEnvelopeHandler(usecase usecase.EnvelopeUsecase, logger *zap.Logger) *EnvelopeHandler {
	return &EnvelopeHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func parseEnvelopeID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", entity.ErrInvalidEnvelopeID, raw)
	}
	return id, nil
}

// ListEnvelopes godoc
// @Summary List envelopes
// @Description List indexed envelopes newest first, each classified for the optional viewer
// @Tags envelopes
// @Produce json
// @Param phase query string false "all, active or expired" default(all)
// @Param creator query string false "Creator address"
// @Param viewer query string false "Viewer address"
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/envelopes [get]
func (h *EnvelopeHandler) ListEnvelopes(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page, err := h.usecase.ListEnvelopes(ctx, usecase.ListQuery{
		Phase:   c.Query("phase"),
		Creator: c.Query("creator"),
		Viewer:  c.Query("viewer"),
		Limit:   c.QueryInt("limit", 0),
		Offset:  c.QueryInt("offset", 0),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(page, "Envelopes retrieved successfully"))
}

// GetStats godoc
// @Summary Envelope statistics
// @Tags envelopes
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/envelopes/stats [get]
func (h *EnvelopeHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.usecase.GetStats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(stats, "Statistics retrieved successfully"))
}

// GetEnvelope godoc
// @Summary Get envelope
// @Description Read one envelope from the contract and classify it for the optional viewer
// @Tags envelopes
// @Produce json
// @Param id path int true "Envelope ID"
// @Param viewer query string false "Viewer address"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/envelopes/{id} [get]
func (h *EnvelopeHandler) GetEnvelope(c *fiber.Ctx) error {
	id, err := parseEnvelopeID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	view, err := h.usecase.GetEnvelope(c.UserContext(), id, c.Query("viewer"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(view, "Envelope retrieved successfully"))
}

// GetClaimers godoc
// @Summary List claimers
// @Tags envelopes
// @Produce json
// @Param id path int true "Envelope ID"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/envelopes/{id}/claimers [get]
func (h *EnvelopeHandler) GetClaimers(c *fiber.Ctx) error {
	id, err := parseEnvelopeID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	claims, err := h.usecase.GetClaims(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(claims, "Claimers retrieved successfully"))
}
