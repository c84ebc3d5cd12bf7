package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"red-envelope/internal/domain/entity"
	"red-envelope/internal/domain/repository"
)

type NetworkUsecase interface {
	// GetNetwork describes the connected chain and the bound contract.
	GetNetwork(ctx context.Context) (*entity.NetworkInfo, error)

	// GetTransactionEvents decodes the envelope events of a mined transaction.
	GetTransactionEvents(ctx context.Context, txHash string) (*entity.TransactionEvents, error)
}

type networkUsecase struct {
	contract repository.ContractRepository
	logger   *zap.Logger
}

func NewNetworkUsecase(contract repository.ContractRepository, logger *zap.Logger) NetworkUsecase {
	return &networkUsecase{
		contract: contract,
		logger:   logger,
	}
}

func (u *networkUsecase) GetNetwork(ctx context.Context) (*entity.NetworkInfo, error) {
	chainID, err := u.contract.ChainID(ctx)
	if err != nil {
		u.logger.Error("Failed to get chain id", zap.Error(err))
		return nil, err
	}

	paused, err := u.contract.IsPaused(ctx)
	if err != nil {
		u.logger.Error("Failed to get paused flag", zap.Error(err))
		return nil, err
	}

	info := &entity.NetworkInfo{
		ChainID:         chainID,
		Name:            entity.NetworkName(chainID),
		ContractAddress: u.contract.ContractAddress().Hex(),
		Paused:          paused,
	}
	if c, ok := entity.SupportedChains[chainID]; ok {
		info.Currency = c.Currency
		info.Explorer = c.Explorer
	}

	owner, err := u.contract.Owner(ctx)
	if err != nil {
		u.logger.Warn("Failed to get contract owner", zap.Error(err))
	} else {
		info.Owner = owner.Hex()
	}

	// Limits are informative; a contract without the constants still reports the network.
	limits, err := u.contract.GetLimits(ctx)
	if err != nil {
		u.logger.Warn("Failed to get contract limits", zap.Error(err))
	} else {
		info.Limits = limits
	}

	return info, nil
}

func parseTxHash(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	raw, err := hexutil.Decode(s)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", entity.ErrInvalidTxHash, s)
	}
	return common.BytesToHash(raw), nil
}

func (u *networkUsecase) GetTransactionEvents(ctx context.Context, txHash string) (*entity.TransactionEvents, error) {
	hash, err := parseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	events, err := u.contract.GetTransactionEvents(ctx, hash)
	if err != nil {
		u.logger.Error("Failed to get transaction events", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		return nil, err
	}

	chainID, err := u.contract.ChainID(ctx)
	if err != nil {
		u.logger.Warn("Failed to get chain id for explorer link", zap.Error(err))
	} else {
		events.ExplorerURL = entity.ExplorerTxURL(chainID, events.TxHash)
	}

	return events, nil
}
