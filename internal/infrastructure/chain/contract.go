package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/infrastructure/metrics"
)

var Module = fx.Module("chain",
	fx.Provide(NewBackend),
	fx.Provide(NewEnvelopeContract),
)

const defaultCallTimeout = 10 * time.Second

// Backend is the subset of the node RPC used by the service.
type Backend interface {
	ethereum.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// NewBackend dials the configured node and closes the connection on stop.
func NewBackend(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	endpoint := strings.TrimSpace(cfg.Chain.RPCURL)
	if endpoint == "" {
		return nil, fmt.Errorf("chain rpc url required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout(cfg.Chain.CallTimeout))
	defer cancel()

	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain node: %w", err)
	}

	logger.Info("Chain node connected", zap.String("rpc_url", endpoint))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})

	return client, nil
}

// EnvelopeContract reads the red envelope contract.
type EnvelopeContract interface {
	Address() common.Address
	ChainID(ctx context.Context) (uint64, error)
	TotalEnvelopes(ctx context.Context) (uint64, error)
	// EnvelopeInfo returns entity.ErrEnvelopeNotFound when the id was never created.
	EnvelopeInfo(ctx context.Context, id uint64) (*entity.Envelope, error)
	HasClaimed(ctx context.Context, id uint64, user common.Address) (bool, error)
	// CanClaim returns the contract's eligibility answer and its reason text.
	CanClaim(ctx context.Context, id uint64, user common.Address) (bool, string, error)
	ClaimAmount(ctx context.Context, id uint64, user common.Address) (*big.Int, error)
	Claimers(ctx context.Context, id uint64) ([]common.Address, error)
	Paused(ctx context.Context) (bool, error)
	Owner(ctx context.Context) (common.Address, error)
	Limits(ctx context.Context) (*entity.ContractLimits, error)
	// TransactionEvents decodes the contract's logs in a mined transaction.
	TransactionEvents(ctx context.Context, txHash common.Hash) (*entity.TransactionEvents, error)
}

type envelopeContract struct {
	backend Backend
	address common.Address
	abi     abi.ABI
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewEnvelopeContract binds the configured contract address and, when
// chain.chain_id is set, refuses a node on a different chain.
func NewEnvelopeContract(cfg *config.Config, backend Backend, m *metrics.Metrics, logger *zap.Logger) (EnvelopeContract, error) {
	c, err := newEnvelopeContract(backend, cfg.Chain.Contract(), cfg.Chain.CallTimeout, m, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Chain.ChainID != 0 {
		chainID, err := c.ChainID(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to read chain id: %w", err)
		}
		if chainID != cfg.Chain.ChainID {
			return nil, fmt.Errorf("chain id mismatch: node reports %d, configured %d", chainID, cfg.Chain.ChainID)
		}
	}

	logger.Info("Envelope contract bound",
		zap.String("address", c.address.Hex()),
		zap.Uint64("expected_chain_id", cfg.Chain.ChainID),
	)

	return c, nil
}

func newEnvelopeContract(backend Backend, address common.Address, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) (*envelopeContract, error) {
	if backend == nil {
		return nil, fmt.Errorf("chain backend not initialised")
	}
	parsed, err := abi.JSON(strings.NewReader(envelopeABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse envelope abi: %w", err)
	}
	return &envelopeContract{
		backend: backend,
		address: address,
		abi:     parsed,
		timeout: callTimeout(timeout),
		metrics: m,
		logger:  logger,
	}, nil
}

func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultCallTimeout
	}
	return d
}

func (c *envelopeContract) Address() common.Address {
	return c.address
}

// call packs, executes and unpacks one view method at the latest block.
func (c *envelopeContract) call(ctx context.Context, method string, args ...interface{}) (out []interface{}, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveChainCall(method, started, err) }()

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err = c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

func (c *envelopeContract) ChainID(ctx context.Context) (chainID uint64, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveChainCall("eth_chainId", started, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch chain id: %w", err)
	}
	if id == nil || !id.IsUint64() {
		return 0, fmt.Errorf("chain id out of range")
	}
	return id.Uint64(), nil
}

func (c *envelopeContract) TotalEnvelopes(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "getTotalEnvelopes")
	if err != nil {
		return 0, err
	}
	return uint64At(out, 0)
}

func (c *envelopeContract) EnvelopeInfo(ctx context.Context, id uint64) (*entity.Envelope, error) {
	out, err := c.call(ctx, "getEnvelopeInfo", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	if len(out) != 10 {
		return nil, fmt.Errorf("getEnvelopeInfo: unexpected %d outputs", len(out))
	}

	creator, ok := out[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("getEnvelopeInfo: creator has type %T", out[0])
	}
	if creator == (common.Address{}) {
		return nil, entity.ErrEnvelopeNotFound
	}

	env := &entity.Envelope{ID: id, Creator: creator.Hex()}
	if env.TotalAmount, err = bigAt(out, 1); err != nil {
		return nil, err
	}
	if env.RemainingAmount, err = bigAt(out, 2); err != nil {
		return nil, err
	}
	if env.TotalCount, err = uint64At(out, 3); err != nil {
		return nil, err
	}
	if env.RemainingCount, err = uint64At(out, 4); err != nil {
		return nil, err
	}
	if env.IsRandom, err = boolAt(out, 5); err != nil {
		return nil, err
	}
	if env.IsActive, err = boolAt(out, 6); err != nil {
		return nil, err
	}
	if env.Message, ok = out[7].(string); !ok {
		return nil, fmt.Errorf("getEnvelopeInfo: message has type %T", out[7])
	}
	if env.CreatedAt, err = unixAt(out, 8); err != nil {
		return nil, err
	}
	if env.ExpiresAt, err = unixAt(out, 9); err != nil {
		return nil, err
	}

	return env, nil
}

func (c *envelopeContract) HasClaimed(ctx context.Context, id uint64, user common.Address) (bool, error) {
	out, err := c.call(ctx, "hasClaimed", new(big.Int).SetUint64(id), user)
	if err != nil {
		return false, err
	}
	return boolAt(out, 0)
}

func (c *envelopeContract) CanClaim(ctx context.Context, id uint64, user common.Address) (bool, string, error) {
	out, err := c.call(ctx, "canClaim", new(big.Int).SetUint64(id), user)
	if err != nil {
		return false, "", err
	}
	can, err := boolAt(out, 0)
	if err != nil {
		return false, "", err
	}
	reason, _ := out[1].(string)
	return can, reason, nil
}

func (c *envelopeContract) ClaimAmount(ctx context.Context, id uint64, user common.Address) (*big.Int, error) {
	out, err := c.call(ctx, "getClaimAmount", new(big.Int).SetUint64(id), user)
	if err != nil {
		return nil, err
	}
	return bigAt(out, 0)
}

func (c *envelopeContract) Claimers(ctx context.Context, id uint64) ([]common.Address, error) {
	out, err := c.call(ctx, "getClaimers", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("getClaimers: empty output")
	}
	claimers, ok := out[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("getClaimers: unexpected type %T", out[0])
	}
	return claimers, nil
}

func (c *envelopeContract) Paused(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, "paused")
	if err != nil {
		return false, err
	}
	return boolAt(out, 0)
}

func (c *envelopeContract) Owner(ctx context.Context) (common.Address, error) {
	out, err := c.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return addressAt(out, 0)
}

func (c *envelopeContract) Limits(ctx context.Context) (*entity.ContractLimits, error) {
	limits := &entity.ContractLimits{}
	for method, dst := range map[string]*uint64{
		"MAX_COUNT":          &limits.MaxCount,
		"MAX_MESSAGE_LENGTH": &limits.MaxMessageLength,
		"MIN_EXPIRY":         &limits.MinExpiry,
		"MAX_EXPIRY":         &limits.MaxExpiry,
	} {
		out, err := c.call(ctx, method)
		if err != nil {
			return nil, err
		}
		if *dst, err = uint64At(out, 0); err != nil {
			return nil, err
		}
	}
	return limits, nil
}

func (c *envelopeContract) TransactionEvents(ctx context.Context, txHash common.Hash) (result *entity.TransactionEvents, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveChainCall("eth_getTransactionReceipt", started, err) }()

	if (txHash == common.Hash{}) {
		return nil, entity.ErrInvalidTxHash
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	receipt, err := c.backend.TransactionReceipt(rctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, entity.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("fetch receipt: %w", err)
	}
	if receipt == nil {
		return nil, entity.ErrTransactionNotFound
	}

	result = &entity.TransactionEvents{
		TxHash:  txHash.Hex(),
		Success: receipt.Status == gethtypes.ReceiptStatusSuccessful,
		Events:  []entity.ContractEvent{},
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}

	for _, log := range receipt.Logs {
		event, ok, err := c.decodeLog(log)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Events = append(result.Events, *event)
		}
	}
	return result, nil
}

// decodeLog reports ok=false for logs of other contracts or unknown topics.
func (c *envelopeContract) decodeLog(log *gethtypes.Log) (*entity.ContractEvent, bool, error) {
	if log == nil || log.Address != c.address || len(log.Topics) == 0 {
		return nil, false, nil
	}
	ev, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		return nil, false, nil
	}

	fields := map[string]interface{}{}
	if err := ev.Inputs.NonIndexed().UnpackIntoMap(fields, log.Data); err != nil {
		return nil, false, fmt.Errorf("decode %s data: %w", ev.Name, err)
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
		return nil, false, fmt.Errorf("decode %s topics: %w", ev.Name, err)
	}

	out := &entity.ContractEvent{
		Name:       ev.Name,
		LogIndex:   log.Index,
		EnvelopeID: fieldUint64(fields, "envelopeId"),
	}

	switch ev.Name {
	case entity.EventEnvelopeCreated:
		out.Account = fieldAddress(fields, "creator")
		setAmount(out, fieldBig(fields, "totalAmount"))
		out.TotalCount = fieldUint64(fields, "totalCount")
		out.IsRandom, _ = fields["isRandom"].(bool)
		out.Message, _ = fields["message"].(string)
		out.ExpiresAt = fieldUnix(fields, "expiresAt")
	case entity.EventEnvelopeClaimed:
		out.Account = fieldAddress(fields, "claimer")
		setAmount(out, fieldBig(fields, "amount"))
		out.RemainingCount = fieldUint64(fields, "remainingCount")
		if v := fieldBig(fields, "remainingAmount"); v != nil {
			out.RemainingAmount = v.String()
		}
	case entity.EventEnvelopeCompleted:
		out.Account = fieldAddress(fields, "creator")
		setAmount(out, fieldBig(fields, "totalAmount"))
		out.TotalCount = fieldUint64(fields, "totalCount")
	case entity.EventEnvelopeRefunded:
		out.Account = fieldAddress(fields, "creator")
		setAmount(out, fieldBig(fields, "refundAmount"))
	case entity.EventEnvelopeExpired:
		setAmount(out, fieldBig(fields, "refundAmount"))
	}

	return out, true, nil
}
