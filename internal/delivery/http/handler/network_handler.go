package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"red-envelope/internal/domain/entity"
	"red-envelope/internal/usecase"
)

type NetworkHandler struct {
	usecase usecase.NetworkUsecase
	logger  *zap.Logger
}

func NewNetworkHandler(usecase usecase.NetworkUsecase, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GetNetwork godoc
// @Summary Network information
// @Description Chain id, network name, contract address, paused flag and limits
// @Tags network
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /api/v1/network [get]
func (h *NetworkHandler) GetNetwork(c *fiber.Ctx) error {
	info, err := h.usecase.GetNetwork(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(info, "Network retrieved successfully"))
}

// GetTransactionEvents godoc
// @Summary Decode transaction events
// @Tags network
// @Produce json
// @Param hash path string true "Transaction hash"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/transactions/{hash}/events [get]
func (h *NetworkHandler) GetTransactionEvents(c *fiber.Ctx) error {
	events, err := h.usecase.GetTransactionEvents(c.UserContext(), c.Params("hash"))
	if err != nil {
		h.logger.Debug("Transaction lookup failed", zap.String("hash", c.Params("hash")), zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(entity.NewSuccessResponse(events, "Transaction events retrieved successfully"))
}
