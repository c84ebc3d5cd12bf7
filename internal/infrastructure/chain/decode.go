package chain

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"red-envelope/internal/domain/entity"
)

func bigAt(out []interface{}, i int) (*big.Int, error) {
	if i >= len(out) {
		return nil, fmt.Errorf("output %d missing", i)
	}
	v, ok := out[i].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("output %d: expected uint256, got %T", i, out[i])
	}
	return v, nil
}

func uint64At(out []interface{}, i int) (uint64, error) {
	v, err := bigAt(out, i)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("output %d: %s overflows uint64", i, v)
	}
	return v.Uint64(), nil
}

var maxUnix = big.NewInt(math.MaxInt64)

// clampUnix converts a uint256 timestamp to unix seconds. Values beyond int64
// are pinned to math.MaxInt64 so a far-future expiry stays in the future.
func clampUnix(v *big.Int) int64 {
	if v == nil || v.Sign() < 0 {
		return 0
	}
	if v.Cmp(maxUnix) > 0 {
		return math.MaxInt64
	}
	return v.Int64()
}

func unixAt(out []interface{}, i int) (int64, error) {
	v, err := bigAt(out, i)
	if err != nil {
		return 0, err
	}
	return clampUnix(v), nil
}

func addressAt(out []interface{}, i int) (common.Address, error) {
	if i >= len(out) {
		return common.Address{}, fmt.Errorf("output %d missing", i)
	}
	v, ok := out[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("output %d: expected address, got %T", i, out[i])
	}
	return v, nil
}

func boolAt(out []interface{}, i int) (bool, error) {
	if i >= len(out) {
		return false, fmt.Errorf("output %d missing", i)
	}
	v, ok := out[i].(bool)
	if !ok {
		return false, fmt.Errorf("output %d: expected bool, got %T", i, out[i])
	}
	return v, nil
}

func fieldBig(fields map[string]interface{}, name string) *big.Int {
	v, _ := fields[name].(*big.Int)
	return v
}

func fieldUint64(fields map[string]interface{}, name string) uint64 {
	v := fieldBig(fields, name)
	if v == nil || !v.IsUint64() {
		return 0
	}
	return v.Uint64()
}

func fieldUnix(fields map[string]interface{}, name string) int64 {
	return clampUnix(fieldBig(fields, name))
}

func fieldAddress(fields map[string]interface{}, name string) string {
	v, ok := fields[name].(common.Address)
	if !ok {
		return ""
	}
	return v.Hex()
}

func setAmount(ev *entity.ContractEvent, wei *big.Int) {
	if wei == nil {
		return
	}
	ev.AmountWei = wei.String()
	ev.AmountEth = entity.FormatEther(wei)
}
