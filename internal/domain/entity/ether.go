package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of wei digits after the ether point.
const EtherDecimals = 18

// WeiDecimal wraps a wei amount for storage; nil is zero.
func WeiDecimal(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0)
}

// FormatEther renders a wei amount as a decimal ether string without
// trailing zeros, e.g. 1500000000000000000 -> "1.5".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}
