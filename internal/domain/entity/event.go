package entity

// Contract event names.
const (
	EventEnvelopeCreated   = "EnvelopeCreated"
	EventEnvelopeClaimed   = "EnvelopeClaimed"
	EventEnvelopeCompleted = "EnvelopeCompleted"
	EventEnvelopeRefunded  = "EnvelopeRefunded"
	EventEnvelopeExpired   = "EnvelopeExpired"
)

// ContractEvent is one decoded log. Fields not carried by the event are left zero.
type ContractEvent struct {
	Name            string `json:"name"`
	LogIndex        uint   `json:"log_index"`
	EnvelopeID      uint64 `json:"envelope_id"`
	Account         string `json:"account,omitempty"` // creator or claimer
	AmountWei       string `json:"amount_wei,omitempty"`
	AmountEth       string `json:"amount_eth,omitempty"`
	TotalCount      uint64 `json:"total_count,omitempty"`
	RemainingCount  uint64 `json:"remaining_count,omitempty"`
	RemainingAmount string `json:"remaining_amount_wei,omitempty"`
	IsRandom        bool   `json:"is_random,omitempty"`
	Message         string `json:"message,omitempty"`
	ExpiresAt       int64  `json:"expires_at,omitempty"`
}

type TransactionEvents struct {
	TxHash      string          `json:"tx_hash"`
	Success     bool            `json:"success"`
	BlockNumber uint64          `json:"block_number"`
	ExplorerURL string          `json:"explorer_url,omitempty"`
	Events      []ContractEvent `json:"events"`
}
