package entity

import "errors"

var (
	ErrEnvelopeNotFound    = errors.New("envelope not found")
	ErrInvalidEnvelopeID   = errors.New("invalid envelope id")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidTxHash       = errors.New("invalid transaction hash")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidPhase        = errors.New("invalid phase, expected all, active or expired")
)
